package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))

	if tok := s.Load(); tok != "" {
		t.Errorf("Load on empty store = %q", tok)
	}

	if err := s.Save("T"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tok := s.Load(); tok != "T" {
		t.Errorf("Load = %q, want %q", tok, "T")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if tok := s.Load(); tok != "" {
		t.Errorf("Load after Clear = %q", tok)
	}
}

func TestClearMissingFileIsNoop(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on missing file: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestSaveCreatesDirAndRestrictsPerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewStore(path)

	if err := s.Save("T"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 0600", perm)
	}
}

func TestCorruptFileReadsAsAnonymous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if tok := NewStore(path).Load(); tok != "" {
		t.Errorf("Load of corrupt file = %q", tok)
	}
}
