// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the radio player
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/radio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
)

// NewModel creates a new TUI model with the cursor on initial, if present
func NewModel(ctrl Controller, game *stations.Game, initial string, volume int) Model {
	m := Model{
		ctrl:   ctrl,
		game:   game,
		volume: clampVolume(volume),
	}
	for i, s := range game.Stations {
		if s.ID == initial {
			m.cursor = i
		}
	}
	return m
}

// New builds the program. Focus reporting lets the player resync when the
// terminal regains focus.
func New(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
}

// StatusSender adapts a program into a player status callback. Statuses
// are forwarded in order by one goroutine; when the TUI falls behind, new
// statuses are dropped until it catches up.
func StatusSender(p *tea.Program) func(radio.Status) {
	ch := make(chan radio.Status, 16)
	go func() {
		for s := range ch {
			p.Send(StatusMsg(s))
		}
	}()
	return func(s radio.Status) {
		select {
		case ch <- s:
		default:
		}
	}
}
