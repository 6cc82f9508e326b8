package pricing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTableLookup(t *testing.T) {
	table := NewTable(map[string]Entry{
		"claude-sonnet-4": {
			InputPer1K:      0.003,
			OutputPer1K:     0.015,
			CacheReadPer1K:  0.0003,
			CacheWritePer1K: 0.00375,
		},
		"claude-sonnet-4-20250514": {
			InputPer1K:  0.004,
			OutputPer1K: 0.020,
		},
		"claude-3-5-haiku": {
			InputPer1K:  0.0008,
			OutputPer1K: 0.004,
		},
	})

	tests := []struct {
		name          string
		model         string
		wantInput     float64
		wantOutput    float64
		wantZeroEntry bool
	}{
		{
			name:       "exact match",
			model:      "claude-sonnet-4-20250514",
			wantInput:  0.004,
			wantOutput: 0.020,
		},
		{
			name:       "prefix match",
			model:      "claude-3-5-haiku-20241022",
			wantInput:  0.0008,
			wantOutput: 0.004,
		},
		{
			name:  "longest prefix wins",
			model: "claude-sonnet-4-20250514-v2",
			// Both "claude-sonnet-4" and "claude-sonnet-4-20250514" prefix
			// this identifier; the longer key must win.
			wantInput:  0.004,
			wantOutput: 0.020,
		},
		{
			name:          "unknown model resolves to zero entry",
			model:         "gpt-4o",
			wantZeroEntry: true,
		},
		{
			name:          "empty model resolves to zero entry",
			model:         "",
			wantZeroEntry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := table.Lookup(tt.model)

			if tt.wantZeroEntry {
				if !entry.IsZero() {
					t.Errorf("Lookup(%q) = %+v, want zero entry", tt.model, entry)
				}
				return
			}
			if entry.InputPer1K != tt.wantInput {
				t.Errorf("Lookup(%q).InputPer1K = %v, want %v", tt.model, entry.InputPer1K, tt.wantInput)
			}
			if entry.OutputPer1K != tt.wantOutput {
				t.Errorf("Lookup(%q).OutputPer1K = %v, want %v", tt.model, entry.OutputPer1K, tt.wantOutput)
			}
		})
	}
}

func TestTableLookupEmptyTableIsZero(t *testing.T) {
	table := NewTable(nil)
	if entry := table.Lookup("claude-sonnet-4"); !entry.IsZero() {
		t.Errorf("empty table Lookup = %+v, want zero entry", entry)
	}
}

func TestDefaultCoversBuiltinTiers(t *testing.T) {
	table := Default()

	for _, model := range []string{
		"claude-3-5-haiku-20241022",
		"claude-sonnet-4-20250514",
	} {
		if entry := table.Lookup(model); entry.IsZero() {
			t.Errorf("Default() has no pricing for built-in tier model %q", model)
		}
	}
}

func TestReplace(t *testing.T) {
	table := NewTable(map[string]Entry{
		"model-a": {InputPer1K: 1},
	})

	table.Replace(map[string]Entry{
		"model-b": {InputPer1K: 2},
	})

	if entry := table.Lookup("model-a"); !entry.IsZero() {
		t.Errorf("model-a survived Replace: %+v", entry)
	}
	if entry := table.Lookup("model-b"); entry.InputPer1K != 2 {
		t.Errorf("model-b InputPer1K = %v, want 2", entry.InputPer1K)
	}
	if got := table.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantModel string
		wantInput float64
	}{
		{
			name: "valid file",
			content: `models:
  claude-sonnet-4:
    input_per_1k: 0.003
    output_per_1k: 0.015
    cache_read_per_1k: 0.0003
    cache_write_per_1k: 0.00375
`,
			wantModel: "claude-sonnet-4",
			wantInput: 0.003,
		},
		{
			name:    "no models section",
			content: "other: thing\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			content: "models:\n  - not\n  a: map\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pricing.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write temp pricing file: %v", err)
			}

			entries, err := LoadFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadFile() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			entry, ok := entries[tt.wantModel]
			if !ok {
				t.Fatalf("LoadFile() missing model %q", tt.wantModel)
			}
			if entry.InputPer1K != tt.wantInput {
				t.Errorf("InputPer1K = %v, want %v", entry.InputPer1K, tt.wantInput)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile() on missing file returned nil error")
	}
}
