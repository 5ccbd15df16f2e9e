// Package schemacache persists induced layout schemas per template so
// induction runs once per template and is reused across generation
// requests. Entries are keyed by (template ID, content hash): replacing a
// template file's content under the same name shows up as a hash mismatch
// and is treated as a miss.
package schemacache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kxiao02/pptweaver/internal/induct"
)

const mappingFile = "slide_induction.json"

// Store is a file-backed schema store with an in-memory LRU front.
// One mapping is stored per template under <dir>/<templateID>/.
type Store struct {
	dir string
	mem *lru.Cache[string, *induct.Mapping]

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-template populate-if-missing locks
}

// New creates a store rooted at dir. memSize bounds the number of
// mappings held in memory.
func New(dir string, memSize int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if memSize <= 0 {
		memSize = 64
	}
	mem, err := lru.New[string, *induct.Mapping](memSize)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, mem: mem, locks: map[string]*sync.Mutex{}}, nil
}

// Get returns the cached mapping for the template, or a miss when no
// entry exists or the stored content hash differs from contentHash.
func (s *Store) Get(templateID, contentHash string) (*induct.Mapping, bool, error) {
	if m, ok := s.mem.Get(templateID); ok {
		if m.ContentHash == contentHash {
			return m, true, nil
		}
		return nil, false, nil
	}

	m, err := s.read(templateID)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if m.ContentHash != contentHash {
		// Stale entry for replaced template content.
		return nil, false, nil
	}
	s.mem.Add(templateID, m)
	return m, true, nil
}

// Put persists a mapping, replacing any previous entry for the template.
func (s *Store) Put(m *induct.Mapping) error {
	dir := filepath.Join(s.dir, m.TemplateID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create template dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	// Write-then-rename so concurrent readers never see a torn file.
	tmp := filepath.Join(dir, mappingFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write mapping: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, mappingFile)); err != nil {
		return fmt.Errorf("rename mapping: %w", err)
	}
	s.mem.Add(m.TemplateID, m)
	return nil
}

// Invalidate removes the template's entry from memory and disk.
func (s *Store) Invalidate(templateID string) error {
	s.mem.Remove(templateID)
	err := os.RemoveAll(filepath.Join(s.dir, templateID))
	if err != nil {
		return fmt.Errorf("remove template entry: %w", err)
	}
	return nil
}

// List returns the template IDs with a persisted mapping.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read cache dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, e.Name(), mappingFile)); err == nil {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// Load returns the persisted mapping for a template without a hash
// check, for read-only listing endpoints.
func (s *Store) Load(templateID string) (*induct.Mapping, error) {
	if m, ok := s.mem.Get(templateID); ok {
		return m, nil
	}
	return s.read(templateID)
}

// GetOrPopulate returns the cached mapping or, on miss, runs induce under
// a per-template lock and persists the result. The lock serializes
// populate-if-missing per template so concurrent requests for the same
// template never race induction on the same cache key.
func (s *Store) GetOrPopulate(templateID, contentHash string, induce func() (*induct.Mapping, error)) (*induct.Mapping, error) {
	lock := s.templateLock(templateID)
	lock.Lock()
	defer lock.Unlock()

	m, ok, err := s.Get(templateID, contentHash)
	if err != nil {
		return nil, err
	}
	if ok {
		return m, nil
	}
	m, err = induce()
	if err != nil {
		return nil, err
	}
	if err := s.Put(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) templateLock(templateID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[templateID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[templateID] = lock
	}
	return lock
}

func (s *Store) read(templateID string) (*induct.Mapping, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, templateID, mappingFile))
	if err != nil {
		return nil, err
	}
	var m induct.Mapping
	// Unknown fields are ignored, so newer writers stay readable.
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode mapping for %s: %w", templateID, err)
	}
	return &m, nil
}
