// ABOUTME: High-level radio player
// ABOUTME: Loads stations, switches between them and keeps them on the broadcast clock
package radio

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/Resonate-Protocol/gtaradio-go/internal/assets"
	"github.com/Resonate-Protocol/gtaradio-go/internal/metrics"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/output"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/playable"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

// ErrUnknownStation is returned when selecting an id not in the lineup
var ErrUnknownStation = errors.New("unknown station")

// PlayerConfig holds player configuration
type PlayerConfig struct {
	Game     *stations.Game
	Provider assets.Provider
	Output   output.Factory
	Sync     *sync.Synchronizer

	// Prepare gates optional decode paths
	Prepare playable.Options

	// Volume is the initial volume (0-100)
	Volume int

	// TickInterval is how often the active station is re-synced (default: 1s)
	TickInterval time.Duration

	Logger *zap.SugaredLogger

	// OnStatus is called after every sync, load and switch. It runs with
	// the player lock held and must not call back into the Player.
	OnStatus func(Status)

	// OnError is called when a load or play fails
	OnError func(error)
}

// Station states
const (
	StateIdle    = "idle"
	StateLoading = "loading"
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateError   = "error"
)

// Status describes what the player is doing
type Status struct {
	Station  stations.Station
	State    string
	Position float64
	Duration float64
	Offset   int
	Quality  sync.Quality
	Seeked   bool
	Format   string
	Note     string
	Volume   int
	Err      string
}

// NowPlaying renders the position, e.g. "1:23 / 4:56"
func (s Status) NowPlaying() string {
	return sync.FormatClock(s.Position) + " / " + sync.FormatClock(s.Duration)
}

// station is the per-station record. All fields are guarded by Player.mu.
type station struct {
	info   stations.Station
	state  sync.StationState
	handle output.Handle
	// gen is the token of the most recent load request
	gen    uint64
	format string
	note   string
}

// Player plays one station at a time on the shared broadcast clock
type Player struct {
	config PlayerConfig
	logger *zap.SugaredLogger

	// mu serializes every sync and guards all station records
	mu       gosync.Mutex
	stations map[string]*station
	active   string
	// playing is the user's intent; the tick retries play while it holds
	playing bool
	volume  int
	status  Status
}

// NewPlayer creates a new player with the given configuration
func NewPlayer(config PlayerConfig) (*Player, error) {
	if config.Game == nil || len(config.Game.Stations) == 0 {
		return nil, fmt.Errorf("player needs a station lineup")
	}
	if config.Provider == nil {
		return nil, fmt.Errorf("player needs a station provider")
	}
	if config.Output == nil {
		return nil, fmt.Errorf("player needs an output")
	}
	if config.Sync == nil {
		return nil, fmt.Errorf("player needs a synchronizer")
	}
	if config.Volume == 0 {
		config.Volume = 100
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop().Sugar()
	}

	p := &Player{
		config:   config,
		logger:   config.Logger,
		stations: make(map[string]*station, len(config.Game.Stations)),
		volume:   config.Volume,
		status:   Status{State: StateIdle, Volume: config.Volume},
	}
	for _, s := range config.Game.Stations {
		p.stations[s.ID] = &station{info: s}
	}
	return p, nil
}

// Select switches to station id: the previous station is paused, the new
// one is loaded on first use, then forced onto the broadcast clock and
// played.
func (p *Player) Select(ctx context.Context, id string) error {
	p.mu.Lock()
	st, ok := p.stations[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownStation, id)
	}

	if prev, ok := p.stations[p.active]; ok && p.active != id && prev.handle != nil {
		prev.handle.Pause()
	}
	p.active = id
	p.playing = true
	st.state.Synced = false

	if st.handle != nil {
		p.syncLocked(true)
		p.mu.Unlock()
		return nil
	}

	st.gen++
	token := st.gen
	p.status = Status{Station: st.info, State: StateLoading, Offset: p.config.Sync.Session().Offset(), Volume: p.volume}
	p.notifyLocked()
	p.mu.Unlock()

	p.logger.Infow("loading station", "station", id, "stem", st.info.Stem)
	h, res, err := p.load(ctx, st.info)

	p.mu.Lock()
	defer p.mu.Unlock()

	if st.gen != token {
		// A newer request for this station owns the record
		metrics.StaleLoadsTotal.Inc()
		p.logger.Debugw("discarding stale load", "station", id, "token", token, "latest", st.gen)
		if h != nil {
			h.Close()
		}
		return nil
	}

	if err != nil {
		if p.active == id {
			p.status = Status{Station: st.info, State: StateError, Err: err.Error(), Volume: p.volume}
			p.notifyLocked()
		}
		p.notifyError(err)
		return fmt.Errorf("station %s: %w", id, err)
	}

	if st.handle != nil {
		st.handle.Close()
	}
	st.handle = h
	st.format = res.Format
	st.note = res.Note
	st.state.Synced = false
	if res.Note != "" {
		p.logger.Infow(res.Note, "station", id)
	}

	if p.active != id {
		// The user moved on while this loaded; keep it for later
		h.Pause()
		return nil
	}
	p.syncLocked(true)
	return nil
}

// load fetches, prepares and loads a station outside the player lock
func (p *Player) load(ctx context.Context, info stations.Station) (output.Handle, *playable.Result, error) {
	raw, err := p.config.Provider.Fetch(ctx, info.Stem)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", info.Stem, err)
	}
	res, err := playable.Prepare(raw, p.config.Prepare)
	if err != nil {
		return nil, nil, err
	}

	h := p.config.Output.NewHandle()
	p.mu.Lock()
	volume := p.volume
	p.mu.Unlock()
	if vs, ok := h.(output.VolumeSetter); ok {
		vs.SetVolume(volume)
	}
	if _, err := h.LoadAndWait(ctx, res.Bytes); err != nil {
		h.Close()
		return nil, nil, err
	}
	return h, res, nil
}

// Skip shifts the shared offset by delta seconds and re-syncs the active
// station only. Other stations pick up the new offset when next selected.
func (p *Player) Skip(delta int) (int, error) {
	offset, err := p.config.Sync.Session().Skip(delta)
	if err != nil {
		p.logger.Warnw("offset not persisted", "offset", offset, "error", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Infow("offset changed", "offset", offset, "delta", delta)
	p.syncLocked(p.playing)
	return offset, err
}

// Resume re-syncs the active station, e.g. after the terminal regains focus
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked(p.playing)
}

// Stop pauses the active station and stops the tick from restarting it
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	if st, ok := p.stations[p.active]; ok && st.handle != nil {
		st.handle.Pause()
		p.status.State = StatePaused
		p.status.Position = st.handle.CurrentTime()
		p.notifyLocked()
	}
}

// Tick runs one periodic sync. It does nothing unless a station is playing.
func (p *Player) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.syncLocked(true)
}

// Run ticks until ctx is done
func (p *Player) Run(ctx context.Context) {
	ticker := time.NewTicker(p.config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}

// syncLocked syncs the active station and publishes its status. Caller
// holds mu.
func (p *Player) syncLocked(autoPlay bool) {
	st, ok := p.stations[p.active]
	if !ok || st.handle == nil {
		return
	}

	report, err := p.config.Sync.Sync(&st.state, st.handle, autoPlay)

	state := StatePlaying
	if st.handle.Paused() {
		state = StatePaused
	}
	p.status = Status{
		Station:  st.info,
		State:    state,
		Position: report.Position,
		Duration: report.Duration,
		Offset:   p.config.Sync.Session().Offset(),
		Quality:  report.Quality,
		Seeked:   report.Seeked,
		Format:   st.format,
		Note:     st.note,
		Volume:   p.volume,
	}
	if report.Seeked {
		p.logger.Debugw("station repositioned", "station", st.info.ID, "reason", report.Reason,
			"target", report.Target, "drift", report.Drift)
	}
	if err != nil {
		p.status.Err = err.Error()
		p.logger.Warnw("play failed", "station", st.info.ID, "error", err)
		p.notifyError(err)
	}
	p.notifyLocked()
}

// SetVolume sets the volume (0-100) on every loaded station
func (p *Player) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	for _, st := range p.stations {
		if vs, ok := st.handle.(output.VolumeSetter); ok {
			vs.SetVolume(volume)
		}
	}
	p.status.Volume = volume
	p.notifyLocked()
}

// Status returns the last published status
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Active returns the selected station id, empty before the first Select
func (p *Player) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Close releases every loaded handle
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, st := range p.stations {
		if st.handle == nil {
			continue
		}
		if err := st.handle.Close(); err != nil {
			errs = append(errs, err)
		}
		st.handle = nil
		st.state.Synced = false
		st.gen++
	}
	p.playing = false
	return errors.Join(errs...)
}

func (p *Player) notifyLocked() {
	if p.config.OnStatus != nil {
		p.config.OnStatus(p.status)
	}
}

func (p *Player) notifyError(err error) {
	if p.config.OnError != nil {
		p.config.OnError(err)
	}
}
