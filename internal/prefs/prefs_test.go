// ABOUTME: Tests for the preference store
// ABOUTME: Verifies persistence across reopen and parse failures
package prefs

import (
	"os"
	"path/filepath"
	"testing"

	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

var _ gtsync.OffsetStore = (*Store)(nil)

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if off, _ := s.LoadOffset(); off != 0 {
		t.Errorf("expected zero offset for new file, got %d", off)
	}
	if err := s.SaveOffset(-60); err != nil {
		t.Fatalf("SaveOffset: %v", err)
	}
	if err := s.SetLastStation("msx"); err != nil {
		t.Fatalf("SetLastStation: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if off, _ := reopened.LoadOffset(); off != -60 {
		t.Errorf("expected offset -60, got %d", off)
	}
	if reopened.LastStation() != "msx" {
		t.Errorf("expected last station msx, got %q", reopened.LastStation())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be renamed away")
	}
}

func TestStoreWithSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	s, _ := Open(path)

	session, err := gtsync.NewSession(s)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := session.Skip(gtsync.SkipSeconds); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	reopened, _ := Open(path)
	if off, _ := reopened.LoadOffset(); off != 30 {
		t.Errorf("expected persisted offset 30, got %d", off)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	os.WriteFile(path, []byte("offset: [1, 2"), 0644)
	if _, err := Open(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestMemoryStore(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveOffset(90); err != nil {
		t.Fatalf("SaveOffset: %v", err)
	}
	if off, _ := s.LoadOffset(); off != 90 {
		t.Errorf("expected 90, got %d", off)
	}
}
