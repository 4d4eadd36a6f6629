// ABOUTME: Station importer CLI
// ABOUTME: Copies a game install's radio files into the player's audio directory
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/gtaradio-go/internal/assets"
	"github.com/Resonate-Protocol/gtaradio-go/internal/logging"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
)

// Exit codes
const (
	exitOK      = 0
	exitNone    = 1
	exitFailure = 2
)

var (
	dir     = pflag.StringP("dir", "d", "", "Game install directory to import from (required)")
	target  = pflag.StringP("target", "t", "sounds", "Directory receiving the station files")
	asJSON  = pflag.Bool("json", false, "Print the summary as JSON")
	verbose = pflag.BoolP("verbose", "V", false, "Log each station as it is imported")
)

func main() {
	pflag.Parse()
	os.Exit(run())
}

func run() int {
	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Error: --dir is required")
		pflag.Usage()
		return exitFailure
	}

	var logger *zap.SugaredLogger
	if *verbose {
		zlog, err := logging.New("", true, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFailure
		}
		defer zlog.Sync()
		logger = zlog.Sugar()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	im := assets.NewImporter(stations.GTA3().Stems(), logger)
	summary, err := im.Import(ctx, *dir, *target)
	if err != nil {
		if errors.Is(err, assets.ErrNoAudio) {
			fmt.Fprintln(os.Stderr, err)
			return exitNone
		}
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		return exitFailure
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFailure
		}
	} else {
		fmt.Println(summary.String())
	}

	switch {
	case summary.Found == 0:
		return exitNone
	case len(summary.Failures) > 0:
		return exitFailure
	}
	return exitOK
}
