package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

var _ model.SeenStore = (*JSONStore)(nil)

// JSONStore is a seen-cache backed by a JSON array of URLs (seen.json).
// The file is loaded once and rewritten atomically on every change.
type JSONStore struct {
	mu   sync.Mutex
	path string
	seen map[string]struct{}
}

// NewJSONStore loads path if it exists; a missing file is an empty cache.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, seen: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading seen cache: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("parsing seen cache %s: %w", path, err)
	}
	for _, u := range urls {
		s.seen[u] = struct{}{}
	}
	return s, nil
}

func (s *JSONStore) HasSeen(url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[url]
	return ok, nil
}

func (s *JSONStore) MarkSeen(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[url]; ok {
		return nil
	}
	s.seen[url] = struct{}{}
	return s.save()
}

// Cleanup is a no-op: the JSON format keeps no timestamps.
func (s *JSONStore) Cleanup(time.Duration) error { return nil }

// Len reports the number of cached URLs.
func (s *JSONStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// save writes the sorted URL list to a temp file and renames it over path.
func (s *JSONStore) save() error {
	urls := make([]string, 0, len(s.seen))
	for u := range s.seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	data, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encoding seen cache: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing seen cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing seen cache: %w", err)
	}
	return nil
}
