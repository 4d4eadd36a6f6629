// ABOUTME: Entry point for the radio player
// ABOUTME: Parses CLI flags, wires the station source and output, and runs the TUI
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/gtaradio-go/internal/assets"
	"github.com/Resonate-Protocol/gtaradio-go/internal/config"
	"github.com/Resonate-Protocol/gtaradio-go/internal/discovery"
	"github.com/Resonate-Protocol/gtaradio-go/internal/logging"
	"github.com/Resonate-Protocol/gtaradio-go/internal/prefs"
	"github.com/Resonate-Protocol/gtaradio-go/internal/ui"
	"github.com/Resonate-Protocol/gtaradio-go/internal/version"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/output"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/playable"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/radio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

var (
	configFile  = pflag.StringP("config", "c", "", "YAML configuration file")
	audioDir    = pflag.StringP("audio-dir", "d", "", "Directory holding station files")
	serverURL   = pflag.StringP("server", "s", "", "Dev server URL (skip the local directory and mDNS)")
	decodeADPCM = pflag.Bool("decode-adpcm", false, "Decode IMA ADPCM station files")
	drift       = pflag.Duration("drift", 0, "Drift before a playing station is realigned (default 2s)")
	prefsFile   = pflag.String("prefs", "", "Preferences file holding the offset and last station")
	logFile     = pflag.String("log-file", "", "Log file path (default gtaradio.log)")
	noTUI       = pflag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	station     = pflag.String("station", "", "Station id to tune at startup")
	debug       = pflag.Bool("debug", false, "Enable debug logging")
	showVersion = pflag.BoolP("version", "v", false, "Print version and exit")
)

// Device format for the shared output context
var deviceFormat = output.DeviceFormat{SampleRate: 44100, Channels: 2}

func main() {
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.UserAgent())
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	useTUI := !*noTUI

	zlog, err := logging.New(cfg.Logging.File, !useTUI, cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	if err := run(cfg, useTUI, logger); err != nil {
		logger.Errorw("player failed", "error", err)
		zlog.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies explicit flags
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := pflag.CommandLine
	if flags.Changed("audio-dir") {
		cfg.AudioDir = *audioDir
	}
	if flags.Changed("server") {
		cfg.ServerURL = *serverURL
	}
	if flags.Changed("decode-adpcm") {
		cfg.DecodeADPCM = *decodeADPCM
	}
	if flags.Changed("drift") {
		cfg.DriftThreshold = *drift
	}
	if flags.Changed("prefs") {
		cfg.PrefsFile = *prefsFile
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = *logFile
	}
	if flags.Changed("station") {
		cfg.Station = *station
	}
	if flags.Changed("debug") {
		cfg.Logging.Debug = *debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config, useTUI bool, logger *zap.SugaredLogger) error {
	game := stations.GTA3()
	logger.Infow("starting radio", "version", version.Version, "game", game.Name)

	store, err := prefs.Open(cfg.PrefsFile)
	if err != nil {
		return err
	}
	session, err := gtsync.NewSession(store)
	if err != nil {
		return err
	}
	synchronizer := gtsync.NewSynchronizer(session, gtsync.SystemClock{}, cfg.DriftThreshold)

	provider, err := selectProvider(cfg, game, logger)
	if err != nil {
		return err
	}

	var out output.Factory
	if oto, err := output.NewOto(deviceFormat, logger); err != nil {
		logger.Warnw("no audio device, playing silently", "error", err)
		out = output.NewSilent(deviceFormat)
	} else {
		out = oto
	}

	var sendStatus func(radio.Status)
	var lastState string
	player, err := radio.NewPlayer(radio.PlayerConfig{
		Game:     game,
		Provider: provider,
		Output:   out,
		Sync:     synchronizer,
		Prepare:  playable.Options{AllowADPCMDecode: cfg.DecodeADPCM},
		Logger:   logger,
		OnStatus: func(s radio.Status) {
			if sendStatus != nil {
				sendStatus(s)
			}
			if s.State != lastState {
				lastState = s.State
				logger.Infow("station status", "station", s.Station.ID, "state", s.State,
					"position", s.NowPlaying(), "offset", s.Offset, "format", s.Format)
			}
		},
		OnError: func(err error) {
			logger.Warnw("player error", "error", err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	initial := initialStation(cfg, store, game)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var prog *tea.Program
	if useTUI {
		prog = ui.New(ui.NewModel(player, game, initial, 100))
		sendStatus = ui.StatusSender(prog)
	}

	go player.Run(ctx)
	go func() {
		if err := player.Select(ctx, initial); err != nil {
			logger.Warnw("initial station failed", "station", initial, "error", err)
		}
	}()

	if prog != nil {
		if _, err := prog.Run(); err != nil {
			logger.Errorw("TUI error", "error", err)
		}
		cancel()
	} else {
		<-ctx.Done()
		logger.Infow("shutdown signal received")
	}

	if active := player.Active(); active != "" {
		if err := store.SetLastStation(active); err != nil {
			logger.Warnw("failed to save last station", "error", err)
		}
	}
	if err := player.Close(); err != nil {
		logger.Warnw("error closing player", "error", err)
	}
	logger.Infow("player stopped")
	return nil
}

// selectProvider prefers an explicit server URL, then the local audio
// directory, then a server found over mDNS. With nothing found the local
// directory is still used so missing stations are reported per station.
func selectProvider(cfg *config.Config, game *stations.Game, logger *zap.SugaredLogger) (assets.Provider, error) {
	if cfg.ServerURL != "" {
		logger.Infow("using dev server", "url", cfg.ServerURL)
		return assets.NewHTTPProvider(cfg.ServerURL, cfg.CacheDir, logger)
	}

	if n := assets.CountMatches(cfg.AudioDir, game.Stems()); n > 0 {
		logger.Infow("using audio directory", "dir", cfg.AudioDir, "stations", n)
		return assets.NewDirProvider(cfg.AudioDir), nil
	}

	logger.Infow("no station files in audio directory, browsing for a dev server", "dir", cfg.AudioDir)
	disc := discovery.NewManager(discovery.Config{Logger: logger})
	defer disc.Stop()
	if server, err := disc.Discover(3 * time.Second); err == nil {
		logger.Infow("discovered dev server", "name", server.Name, "url", server.URL())
		return assets.NewHTTPProvider(server.URL(), cfg.CacheDir, logger)
	}

	logger.Warnw("no dev server found", "dir", cfg.AudioDir)
	return assets.NewDirProvider(cfg.AudioDir), nil
}

// initialStation picks the flag or config station, then the last station
// played, then the first in the lineup.
func initialStation(cfg *config.Config, store *prefs.Store, game *stations.Game) string {
	for _, id := range []string{cfg.Station, store.LastStation()} {
		if _, ok := game.Station(id); ok {
			return id
		}
	}
	return game.Stations[0].ID
}
