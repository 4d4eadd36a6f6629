// ABOUTME: Station catalog
// ABOUTME: Validated station descriptors and the built-in GTA III lineup
package stations

import (
	"fmt"
	"strings"
)

// Station describes one radio station and the file stem of its audio
type Station struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Stem string `json:"stem" yaml:"stem"`
}

// NewStation validates and builds a station. Stems are upper-cased.
func NewStation(id, name, stem string) (Station, error) {
	s := Station{
		ID:   strings.TrimSpace(id),
		Name: strings.TrimSpace(name),
		Stem: strings.ToUpper(strings.TrimSpace(stem)),
	}
	if err := s.Validate(); err != nil {
		return Station{}, err
	}
	return s, nil
}

// Validate checks that every field is set
func (s Station) Validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("station id is required")
	case s.Name == "":
		return fmt.Errorf("station %s: name is required", s.ID)
	case s.Stem == "":
		return fmt.Errorf("station %s: stem is required", s.ID)
	case strings.ContainsAny(s.Stem, `/\.`):
		return fmt.Errorf("station %s: stem %q must be a bare file name", s.ID, s.Stem)
	}
	return nil
}

// Game is an ordered station lineup
type Game struct {
	ID       string
	Name     string
	Stations []Station
}

// NewGame validates the lineup and rejects duplicate ids or stems
func NewGame(id, name string, stations []Station) (*Game, error) {
	if id == "" {
		return nil, fmt.Errorf("game id is required")
	}
	ids := make(map[string]bool, len(stations))
	stems := make(map[string]bool, len(stations))
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}
		if ids[s.ID] {
			return nil, fmt.Errorf("game %s: duplicate station id %s", id, s.ID)
		}
		if stems[s.Stem] {
			return nil, fmt.Errorf("game %s: duplicate stem %s", id, s.Stem)
		}
		ids[s.ID] = true
		stems[s.Stem] = true
	}
	return &Game{ID: id, Name: name, Stations: stations}, nil
}

// Station looks up a station by id
func (g *Game) Station(id string) (Station, bool) {
	for _, s := range g.Stations {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}

// Stems lists the station stems in lineup order
func (g *Game) Stems() []string {
	stems := make([]string, len(g.Stations))
	for i, s := range g.Stations {
		stems[i] = s.Stem
	}
	return stems
}

// GTA3 returns the Grand Theft Auto III lineup
func GTA3() *Game {
	g, err := NewGame("gta3", "Grand Theft Auto III", []Station{
		{ID: "head", Name: "Head Radio", Stem: "HEAD"},
		{ID: "class", Name: "Double Clef FM", Stem: "CLASS"},
		{ID: "kjah", Name: "K-JAH", Stem: "KJAH"},
		{ID: "rise", Name: "Rise FM", Stem: "RISE"},
		{ID: "lips", Name: "Lips 106", Stem: "LIPS"},
		{ID: "game", Name: "Game Radio FM", Stem: "GAME"},
		{ID: "msx", Name: "MSX FM", Stem: "MSX"},
		{ID: "flash", Name: "Flashback 95.6", Stem: "FLASH"},
		{ID: "chat", Name: "Chatterbox FM", Stem: "CHAT"},
	})
	if err != nil {
		panic(err)
	}
	return g
}
