package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONStore_MissingFileIsEmpty(t *testing.T) {
	s, err := NewJSONStore(filepath.Join(t.TempDir(), "seen.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestJSONStore_PersistsSortedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	s, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	for _, u := range []string{"https://b", "https://a", "https://b"} {
		if err := s.MarkSeen(u); err != nil {
			t.Fatalf("MarkSeen(%s): %v", u, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://a" || urls[1] != "https://b" {
		t.Errorf("file contents = %v, want sorted unique URLs", urls)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after save")
	}

	reloaded, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if seen, _ := reloaded.HasSeen("https://a"); !seen {
		t.Error("expected reloaded store to remember https://a")
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not an array"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(path); err == nil {
		t.Fatal("expected error for corrupt seen cache")
	}
}
