package fixtures

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader loads fixtures from a directory and caches them by identifier for
// the process lifetime. A fixture identifier is the file basename without
// extension: "support-session" names support-session.yaml (or .yml).
//
// The cache is append-only; entries are never evicted individually, only
// cleared wholesale for test isolation.
type Loader struct {
	dir    string
	mu     sync.RWMutex
	cache  map[string]*Fixture
	logger *slog.Logger
}

// NewLoader creates a fixture loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:    dir,
		cache:  make(map[string]*Fixture),
		logger: slog.Default().With("component", "fixtures.loader"),
	}
}

// Dir returns the directory the loader reads from.
func (l *Loader) Dir() string {
	return l.dir
}

// Load returns the fixture registered under id, reading and caching it on
// first reference. A missing fixture is a hard error that enumerates the
// available identifiers.
func (l *Loader) Load(id string) (*Fixture, error) {
	l.mu.RLock()
	fixture, ok := l.cache[id]
	l.mu.RUnlock()
	if ok {
		return fixture, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under the write lock; another goroutine may have raced the
	// first load.
	if fixture, ok := l.cache[id]; ok {
		return fixture, nil
	}

	fixture, err := l.read(id)
	if err != nil {
		return nil, err
	}
	l.cache[id] = fixture

	l.logger.Debug("fixture loaded",
		"fixture", id,
		"responses", fixture.ResponseCount(),
		"operations", len(fixture.Operations),
	)

	return fixture, nil
}

// ClearCache empties the fixture cache. Clearing an empty cache is a no-op;
// the operation is idempotent.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache = make(map[string]*Fixture)
}

// CachedCount returns the number of cached fixtures (for tests).
func (l *Loader) CachedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.cache)
}

// Available returns the fixture identifiers present in the directory,
// sorted. Directory read failures yield an empty list; this feeds error
// messages, not control flow.
func (l *Loader) Available() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext == ".yaml" || ext == ".yml" {
			ids = append(ids, strings.TrimSuffix(name, ext))
		}
	}
	sort.Strings(ids)
	return ids
}

// read loads and parses one fixture file. Caller holds the write lock.
func (l *Loader) read(id string) (*Fixture, error) {
	path, err := l.resolve(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %q: %w", id, err)
	}

	fixture := &Fixture{id: id}
	if err := yaml.Unmarshal(data, fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %q: %w", id, err)
	}

	return fixture, nil
}

// resolve maps an identifier to its file path, preferring .yaml over .yml.
func (l *Loader) resolve(id string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(l.dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &NotFoundError{ID: id, Available: l.Available()}
}
