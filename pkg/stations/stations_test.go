// ABOUTME: Tests for the station catalog
// ABOUTME: Verifies descriptor validation and the built-in lineup
package stations

import "testing"

func TestNewStation(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		title   string
		stem    string
		wantErr bool
	}{
		{"valid", "head", "Head Radio", "HEAD", false},
		{"stem upper-cased", "head", "Head Radio", " head ", false},
		{"missing id", "", "Head Radio", "HEAD", true},
		{"missing name", "head", "  ", "HEAD", true},
		{"missing stem", "head", "Head Radio", "", true},
		{"path in stem", "head", "Head Radio", "../HEAD", true},
		{"extension in stem", "head", "Head Radio", "HEAD.wav", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStation(tt.id, tt.title, tt.stem)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err == nil && s.Stem != "HEAD" {
				t.Errorf("expected stem HEAD, got %q", s.Stem)
			}
		})
	}
}

func TestNewGameRejectsDuplicates(t *testing.T) {
	a := Station{ID: "a", Name: "A", Stem: "A"}
	if _, err := NewGame("g", "G", []Station{a, {ID: "a", Name: "B", Stem: "B"}}); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, err := NewGame("g", "G", []Station{a, {ID: "b", Name: "B", Stem: "A"}}); err == nil {
		t.Error("expected duplicate stem error")
	}
	if _, err := NewGame("", "G", nil); err == nil {
		t.Error("expected missing game id error")
	}
}

func TestGTA3Lineup(t *testing.T) {
	g := GTA3()
	expected := []string{"HEAD", "CLASS", "KJAH", "RISE", "LIPS", "GAME", "MSX", "FLASH", "CHAT"}

	stems := g.Stems()
	if len(stems) != len(expected) {
		t.Fatalf("expected %d stations, got %d", len(expected), len(stems))
	}
	for i, stem := range expected {
		if stems[i] != stem {
			t.Errorf("station %d: expected stem %s, got %s", i, stem, stems[i])
		}
	}

	s, ok := g.Station("flash")
	if !ok || s.Name != "Flashback 95.6" {
		t.Errorf("expected Flashback 95.6, got %+v", s)
	}
	if _, ok := g.Station("nope"); ok {
		t.Error("expected unknown station lookup to fail")
	}
}
