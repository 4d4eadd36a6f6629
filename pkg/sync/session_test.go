// ABOUTME: Tests for the shared offset session
// ABOUTME: Verifies skip persistence and store failures
package sync

import (
	"errors"
	"testing"
)

type failingStore struct {
	loadErr error
	saveErr error
	saved   []int
}

func (f *failingStore) LoadOffset() (int, error) { return 90, f.loadErr }

func (f *failingStore) SaveOffset(offset int) error {
	f.saved = append(f.saved, offset)
	return f.saveErr
}

func TestSessionSkip(t *testing.T) {
	store := &MemoryStore{}
	session, err := NewSession(store)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	steps := []struct {
		delta    int
		expected int
	}{
		{SkipSeconds, 30},
		{SkipSeconds, 60},
		{-SkipSeconds, 30},
		{-SkipSeconds, 0},
		{-SkipSeconds, -30},
	}
	for _, step := range steps {
		got, err := session.Skip(step.delta)
		if err != nil {
			t.Fatalf("Skip(%d): %v", step.delta, err)
		}
		if got != step.expected || session.Offset() != step.expected {
			t.Errorf("Skip(%d): expected %d, got %d", step.delta, step.expected, got)
		}
		if saved, _ := store.LoadOffset(); saved != step.expected {
			t.Errorf("Skip(%d): expected persisted %d, got %d", step.delta, step.expected, saved)
		}
	}
}

func TestSessionLoadsPersistedOffset(t *testing.T) {
	session, err := NewSession(&failingStore{})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if session.Offset() != 90 {
		t.Errorf("expected offset 90, got %d", session.Offset())
	}
}

func TestSessionLoadFailure(t *testing.T) {
	if _, err := NewSession(&failingStore{loadErr: errors.New("corrupt")}); err == nil {
		t.Error("expected load failure")
	}
}

func TestSessionSaveFailureKeepsOffset(t *testing.T) {
	store := &failingStore{saveErr: errors.New("read-only")}
	session, _ := NewSession(store)

	got, err := session.Skip(SkipSeconds)
	if err == nil {
		t.Fatal("expected save failure")
	}
	if got != 120 || session.Offset() != 120 {
		t.Errorf("expected offset 120 despite failure, got %d", got)
	}
	if len(store.saved) != 1 || store.saved[0] != 120 {
		t.Errorf("expected one save attempt of 120, got %v", store.saved)
	}
}

func TestSessionSetOffset(t *testing.T) {
	store := &MemoryStore{}
	session, _ := NewSession(store)
	if err := session.SetOffset(-45); err != nil {
		t.Fatalf("SetOffset: %v", err)
	}
	if saved, _ := store.LoadOffset(); saved != -45 {
		t.Errorf("expected persisted -45, got %d", saved)
	}
}
