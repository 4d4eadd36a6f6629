// ABOUTME: Clock probe for the dev server
// ABOUTME: Compares the server's broadcast clock ticks with this machine's clock
package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Resonate-Protocol/gtaradio-go/internal/client"
	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

var (
	serverAddr = pflag.StringP("server", "s", "localhost:4173", "Server address or URL")
	count      = pflag.IntP("count", "n", 10, "Ticks to read before exiting (0 = until interrupted)")
)

func main() {
	pflag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Connecting to %s...\n", *serverAddr)
	c := client.NewClient(client.Config{ServerURL: *serverAddr})
	if err := c.Connect(ctx); err != nil {
		log.Fatalf("Clock error: %v", err)
	}
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	var worst float64
	n := 0
	for tick := range c.Ticks {
		// Skew between the server's wall clock and ours, both local midnight based
		local := gtsync.SecondsSinceMidnight(gtsync.SystemClock{}.Now())
		skew := local - tick.Time
		if math.Abs(skew) > math.Abs(worst) {
			worst = skew
		}

		log.Printf("broadcast %s (offset %+ds) skew %+.3fs stations %d",
			gtsync.FormatClock(tick.Broadcast), tick.Offset, skew, len(tick.Targets))

		n++
		if *count > 0 && n >= *count {
			break
		}
	}
	c.Close()

	fmt.Printf("Worst skew: %+.3fs\n", worst)
	if math.Abs(worst) > gtsync.DefaultDriftThreshold.Seconds() {
		fmt.Println("Clocks differ by more than the drift threshold; stations will not line up")
		os.Exit(1)
	}
}
