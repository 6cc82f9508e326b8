package store

import (
	"context"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/ledger"
)

func TestMemoryStore_InsertAndQuery(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	record := testRecord("rec-1", "summarize", "claude-3-5-haiku-20241022", now)
	if err := s.Insert(ctx, record); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	// Mutating the caller's record must not affect the stored copy.
	record.Operation = "mutated"

	stored := s.GetByID("rec-1")
	if stored == nil {
		t.Fatal("GetByID returned nil")
	}
	if stored.Operation != "summarize" {
		t.Errorf("stored operation = %q, want 'summarize'", stored.Operation)
	}

	results, err := s.Query(ctx, &ledger.Filter{Operation: "summarize"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(results))
	}
}

func TestMemoryStore_QueryOrderingAndPagination(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"rec-1", "rec-2", "rec-3"} {
		rec := testRecord(id, "summarize", "claude-3-5-haiku-20241022", base.Add(time.Duration(i)*time.Minute))
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert(%s) failed: %v", id, err)
		}
	}

	results, err := s.Query(ctx, &ledger.Filter{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	wantOrder := []string{"rec-3", "rec-2", "rec-1"}
	for i, want := range wantOrder {
		if results[i].ID != want {
			t.Errorf("results[%d].ID = %q, want %q", i, results[i].ID, want)
		}
	}

	page, err := s.Query(ctx, &ledger.Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "rec-2" {
		t.Errorf("paginated query = %v records, want [rec-2]", len(page))
	}
}

func TestMemoryStore_SummarizeAndPrune(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	old := testRecord("rec-old", "classify", "claude-sonnet-4-20250514", now.Add(-72*time.Hour))
	old.Cost = 0.05
	fresh := testRecord("rec-fresh", "classify", "claude-sonnet-4-20250514", now)
	fresh.Cost = 0.07

	for _, rec := range []*ledger.Record{old, fresh} {
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert(%s) failed: %v", rec.ID, err)
		}
	}

	summaries, err := s.Summarize(ctx, nil)
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 summary row, got %d", len(summaries))
	}
	if summaries[0].Calls != 2 {
		t.Errorf("Calls = %d, want 2", summaries[0].Calls)
	}
	if diff := summaries[0].Cost - 0.12; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Cost = %v, want 0.12", summaries[0].Cost)
	}

	pruned, err := s.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("Expected 1 pruned record, got %d", pruned)
	}
	if s.Size() != 1 {
		t.Errorf("Size() = %d after prune, want 1", s.Size())
	}
}
