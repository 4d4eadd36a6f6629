// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests key handling, status updates and rendering
package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/gtaradio-go/pkg/radio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

type fakeController struct {
	selected []string
	skips    []int
	resumes  int
	stops    int
	volumes  []int
	selErr   error
}

func (f *fakeController) Select(ctx context.Context, id string) error {
	f.selected = append(f.selected, id)
	return f.selErr
}

func (f *fakeController) Skip(delta int) (int, error) {
	f.skips = append(f.skips, delta)
	return delta, nil
}

func (f *fakeController) Resume()              { f.resumes++ }
func (f *fakeController) Stop()                { f.stops++ }
func (f *fakeController) SetVolume(volume int) { f.volumes = append(f.volumes, volume) }

var _ Controller = (*radio.Player)(nil)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds a key and runs any returned command synchronously
func press(t *testing.T, m Model, k string) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(key(k))
	var msg tea.Msg
	if cmd != nil {
		msg = cmd()
	}
	return next.(Model), msg
}

func TestNewModel(t *testing.T) {
	m := NewModel(&fakeController{}, stations.GTA3(), "lips", 80)
	if m.cursor != 4 {
		t.Errorf("expected cursor on LIPS (4), got %d", m.cursor)
	}
	if m.volume != 80 {
		t.Errorf("expected volume 80, got %d", m.volume)
	}
}

func TestCursorAndSelect(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, stations.GTA3(), "", 100)

	m, _ = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("expected cursor to stay at top, got %d", m.cursor)
	}
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "enter")

	if len(ctrl.selected) != 1 || ctrl.selected[0] != "kjah" {
		t.Errorf("expected kjah selected, got %v", ctrl.selected)
	}

	m, _ = press(t, m, "9")
	if m.cursor != 8 || ctrl.selected[len(ctrl.selected)-1] != "chat" {
		t.Errorf("expected direct select of chat, got cursor %d %v", m.cursor, ctrl.selected)
	}
}

func TestSkipKeys(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, stations.GTA3(), "", 100)

	m, _ = press(t, m, "right")
	m, _ = press(t, m, "[")
	expected := []int{sync.SkipSeconds, -sync.SkipSeconds}
	if len(ctrl.skips) != 2 || ctrl.skips[0] != expected[0] || ctrl.skips[1] != expected[1] {
		t.Errorf("expected skips %v, got %v", expected, ctrl.skips)
	}
}

func TestVolumeKeys(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, stations.GTA3(), "", 100)

	m, _ = press(t, m, "+")
	if m.volume != 100 {
		t.Errorf("expected volume clamped at 100, got %d", m.volume)
	}
	m, _ = press(t, m, "-")
	if m.volume != 95 {
		t.Errorf("expected volume 95, got %d", m.volume)
	}
	if ctrl.volumes[len(ctrl.volumes)-1] != 95 {
		t.Errorf("expected controller volume 95, got %v", ctrl.volumes)
	}
}

func TestFocusResumes(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, stations.GTA3(), "", 100)

	_, cmd := m.Update(tea.FocusMsg{})
	if cmd == nil {
		t.Fatal("expected resume command on focus")
	}
	cmd()
	if ctrl.resumes != 1 {
		t.Errorf("expected one resume, got %d", ctrl.resumes)
	}
}

func TestSelectErrorShown(t *testing.T) {
	ctrl := &fakeController{selErr: errors.New("station audio not found")}
	m := NewModel(ctrl, stations.GTA3(), "", 100)
	m.width = 80

	m, msg := press(t, m, "enter")
	next, _ := m.Update(msg)
	m = next.(Model)
	if !strings.Contains(m.View(), "station audio not found") {
		t.Errorf("expected error in view:\n%s", m.View())
	}
}

func TestStatusRendering(t *testing.T) {
	m := NewModel(&fakeController{}, stations.GTA3(), "", 100)
	m.width = 80

	flash, _ := stations.GTA3().Station("flash")
	next, _ := m.Update(StatusMsg{
		Station:  flash,
		State:    radio.StatePlaying,
		Position: 83,
		Duration: 296,
		Offset:   -30,
		Quality:  sync.QualityGood,
		Volume:   60,
	})
	m = next.(Model)

	view := m.View()
	for _, want := range []string{"Flashback 95.6  1:23 / 4:56", "-30s", "On air", "▶"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
	if m.volume != 60 {
		t.Errorf("expected volume from status, got %d", m.volume)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(&fakeController{}, stations.GTA3(), "", 100)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestLoadingView(t *testing.T) {
	m := NewModel(&fakeController{}, stations.GTA3(), "", 100)
	if m.View() != "Loading..." {
		t.Errorf("expected loading view before size is known, got %q", m.View())
	}
}
