// ABOUTME: Station audio providers
// ABOUTME: Resolves a station stem to raw file bytes from disk or a server
package assets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no file exists for a stem
var ErrNotFound = errors.New("station audio not found")

// Extensions lists the accepted station file extensions in lookup order
var Extensions = []string{".wav", ".mp3", ".flac"}

// Provider fetches the raw bytes of a station's audio file
type Provider interface {
	Fetch(ctx context.Context, stem string) ([]byte, error)
}
