// ABOUTME: Entry point for the radio dev server
// ABOUTME: Parses CLI flags and serves station audio and the broadcast clock
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Resonate-Protocol/gtaradio-go/internal/assets"
	"github.com/Resonate-Protocol/gtaradio-go/internal/config"
	"github.com/Resonate-Protocol/gtaradio-go/internal/logging"
	"github.com/Resonate-Protocol/gtaradio-go/internal/prefs"
	"github.com/Resonate-Protocol/gtaradio-go/internal/server"
	"github.com/Resonate-Protocol/gtaradio-go/internal/version"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

var (
	configFile  = pflag.StringP("config", "c", "", "YAML configuration file")
	addr        = pflag.StringP("addr", "a", "", "Listen address (default :4173)")
	name        = pflag.String("name", "", "Server friendly name (default: hostname-gtaradio)")
	audioDir    = pflag.StringP("audio-dir", "d", "", "Directory holding station files")
	decodeADPCM = pflag.Bool("decode-adpcm", false, "Allow ?decode=1 to decode IMA ADPCM")
	prefsFile   = pflag.String("prefs", "", "Preferences file holding the shared offset")
	logFile     = pflag.String("log-file", "gtaradio-server.log", "Log file path")
	debug       = pflag.Bool("debug", false, "Enable debug logging")
	noMDNS      = pflag.Bool("no-mdns", false, "Disable mDNS advertisement")
)

func main() {
	pflag.Parse()

	cfg := config.Default()
	cfg.Server.Advertise = true
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	flags := pflag.CommandLine
	if flags.Changed("addr") {
		cfg.Server.Addr = *addr
	}
	if flags.Changed("name") {
		cfg.Server.Name = *name
	}
	if flags.Changed("audio-dir") {
		cfg.AudioDir = *audioDir
	}
	if flags.Changed("decode-adpcm") {
		cfg.DecodeADPCM = *decodeADPCM
	}
	if flags.Changed("prefs") {
		cfg.PrefsFile = *prefsFile
	}
	if flags.Changed("no-mdns") {
		cfg.Server.Advertise = !*noMDNS
	}
	if flags.Changed("debug") {
		cfg.Logging.Debug = *debug
	}
	cfg.Logging.File = *logFile

	// Without a config file the name defaults to the host
	if !flags.Changed("name") && *configFile == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		cfg.Server.Name = fmt.Sprintf("%s-gtaradio", hostname)
	}

	zlog, err := logging.New(cfg.Logging.File, true, cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	logger.Infow("starting dev server", "name", cfg.Server.Name, "addr", cfg.Server.Addr,
		"audio_dir", cfg.AudioDir, "version", version.Version)
	logger.Infow("press Ctrl-C to stop", "log_file", cfg.Logging.File)

	store, err := prefs.Open(cfg.PrefsFile)
	if err != nil {
		logger.Fatalw("failed to open preferences", "error", err)
	}
	session, err := gtsync.NewSession(store)
	if err != nil {
		logger.Fatalw("failed to load offset", "error", err)
	}

	srv, err := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		Name:         cfg.Server.Name,
		Advertise:    cfg.Server.Advertise,
		AllowOrigins: cfg.Server.AllowOrigins,
		ImportTarget: cfg.ImportDir(),
		DecodeADPCM:  cfg.DecodeADPCM,
		Logger:       logger,
	}, stations.GTA3(), assets.NewDirProvider(cfg.AudioDir), session)
	if err != nil {
		logger.Fatalw("failed to create server", "error", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Infow("received signal, shutting down gracefully", "signal", sig.String())
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		logger.Fatalw("server error", "error", err)
	}
}
