// ABOUTME: Build version information
// ABOUTME: Product identity reported by the server and player
package version

// Version is overridden at build time with -ldflags "-X .../version.Version=..."
var Version = "0.3.0"

const (
	Product      = "GTA Radio"
	Manufacturer = "gtaradio"
)

// UserAgent identifies HTTP requests from the player
func UserAgent() string {
	return "gtaradio/" + Version
}
