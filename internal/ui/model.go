// ABOUTME: Bubbletea model for the radio TUI
// ABOUTME: Station list, now-playing line, skip and volume keys
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/radio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

// Controller is the subset of the player the TUI drives
type Controller interface {
	Select(ctx context.Context, id string) error
	Skip(delta int) (int, error)
	Resume()
	Stop()
	SetVolume(volume int)
}

// StatusMsg carries a player status into the TUI
type StatusMsg radio.Status

// ErrMsg reports a failed player command
type ErrMsg struct{ Err error }

const volumeStep = 5

// Model represents the TUI state
type Model struct {
	ctrl     Controller
	game     *stations.Game
	cursor   int
	status   radio.Status
	volume   int
	lastErr  string
	showInfo bool

	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.FocusMsg:
		return m, m.resumeCmd()
	case StatusMsg:
		m.applyStatus(radio.Status(msg))
	case ErrMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		}
	}
	return m, nil
}

// applyStatus updates model from a player status
func (m *Model) applyStatus(s radio.Status) {
	m.status = s
	if s.Volume > 0 {
		m.volume = s.Volume
	}
	if s.Err != "" {
		m.lastErr = s.Err
	} else if s.State == radio.StatePlaying {
		m.lastErr = ""
	}
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.game.Stations)-1 {
			m.cursor++
		}
	case "enter":
		return m, m.selectCmd(m.game.Stations[m.cursor].ID)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '1')
		if i < len(m.game.Stations) {
			m.cursor = i
			return m, m.selectCmd(m.game.Stations[i].ID)
		}
	case "left", "[":
		return m, m.skipCmd(-sync.SkipSeconds)
	case "right", "]":
		return m, m.skipCmd(sync.SkipSeconds)
	case "s":
		return m, m.stopCmd()
	case "+", "=":
		m.volume = clampVolume(m.volume + volumeStep)
		return m, m.volumeCmd(m.volume)
	case "-":
		m.volume = clampVolume(m.volume - volumeStep)
		return m, m.volumeCmd(m.volume)
	case "i":
		m.showInfo = !m.showInfo
	}
	return m, nil
}

func (m Model) selectCmd(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if err := ctrl.Select(context.Background(), id); err != nil {
			return ErrMsg{Err: err}
		}
		return nil
	}
}

func (m Model) skipCmd(delta int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if _, err := ctrl.Skip(delta); err != nil {
			return ErrMsg{Err: err}
		}
		return nil
	}
}

func (m Model) resumeCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Resume()
		return nil
	}
}

func (m Model) stopCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Stop()
		return nil
	}
}

func (m Model) volumeCmd(volume int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.SetVolume(volume)
		return nil
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderStations())
	b.WriteString(m.renderNowPlaying())
	if m.showInfo {
		b.WriteString(m.renderInfo())
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders the title and sync status
func (m Model) renderHeader() string {
	syncIcon := "✗"
	syncText := "Not playing"
	if m.status.Duration > 0 {
		switch m.status.Quality {
		case sync.QualityGood:
			syncIcon = "✓"
			syncText = "On air"
		case sync.QualityDegraded:
			syncIcon = "⚠"
			syncText = "Drifted, realigned"
		default:
			syncIcon = "↻"
			syncText = "Tuned in"
		}
	}

	return fmt.Sprintf(`┌─ %-50s ┐
│ Sync:   %s %-42s │
├──────────────────────────────────────────────────────┤
`, truncate(m.game.Name+" Radio", 50), syncIcon, truncate(syncText, 42))
}

// renderStations renders the station list with cursor and active marker
func (m Model) renderStations() string {
	var b strings.Builder
	for i, s := range m.game.Stations {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}
		marker := " "
		if s.ID == m.status.Station.ID {
			switch m.status.State {
			case radio.StatePlaying:
				marker = "▶"
			case radio.StateLoading:
				marker = "…"
			case radio.StatePaused:
				marker = "‖"
			case radio.StateError:
				marker = "!"
			}
		}
		fmt.Fprintf(&b, "│ %s %s %d. %-45s │\n", cursor, marker, i+1, truncate(s.Name, 45))
	}
	b.WriteString("├──────────────────────────────────────────────────────┤\n")
	return b.String()
}

// renderNowPlaying renders position, offset and volume
func (m Model) renderNowPlaying() string {
	var b strings.Builder
	if m.status.Station.ID == "" {
		b.WriteString("│ No station                                           │\n")
	} else {
		line := fmt.Sprintf("%s  %s", m.status.Station.Name, m.status.NowPlaying())
		fmt.Fprintf(&b, "│ Now:    %-44s │\n", truncate(line, 44))
	}
	fmt.Fprintf(&b, "│ Offset: %-44s │\n", fmt.Sprintf("%+ds", m.status.Offset))
	fmt.Fprintf(&b, "│ Volume: [%s] %3d%%%-28s │\n", renderBar(m.volume, 100, 10), m.volume, "")
	if m.lastErr != "" {
		fmt.Fprintf(&b, "│ Error:  %-44s │\n", truncate(m.lastErr, 44))
	}
	return b.String()
}

// renderInfo renders format details
func (m Model) renderInfo() string {
	format := m.status.Format
	if format == "" {
		format = "-"
	}
	s := fmt.Sprintf("│ Format: %-44s │\n", truncate(format, 44))
	if m.status.Note != "" {
		s += fmt.Sprintf("│ Note:   %-44s │\n", truncate(m.status.Note, 44))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓ Enter:Tune  ←/→:Skip 30s  +/-:Vol  s:Stop  q:Quit │
└──────────────────────────────────────────────────────┘
`
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
