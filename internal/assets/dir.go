// ABOUTME: Directory-backed station provider
// ABOUTME: Finds <STEM>.wav/.mp3/.flac in any letter case
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirProvider serves station files from a local directory
type DirProvider struct {
	Dir string
}

// NewDirProvider creates a provider rooted at dir
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{Dir: dir}
}

// Find returns the path of the file for stem, or ErrNotFound
func (p *DirProvider) Find(stem string) (string, error) {
	return findStemFile(p.Dir, stem)
}

// Fetch reads the file for stem
func (p *DirProvider) Fetch(ctx context.Context, stem string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := p.Find(stem)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// findStemFile tries exact upper and lower case names first, then scans the
// directory for a case-insensitive stem match.
func findStemFile(dir, stem string) (string, error) {
	upper := strings.ToUpper(stem)
	lower := strings.ToLower(stem)

	for _, ext := range Extensions {
		for _, name := range []string{upper + strings.ToUpper(ext), upper + ext, lower + ext} {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, nil
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ErrNotFound
	}
	for _, ext := range Extensions {
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			name := e.Name()
			fileExt := filepath.Ext(name)
			if !strings.EqualFold(fileExt, ext) {
				continue
			}
			if strings.EqualFold(strings.TrimSuffix(name, fileExt), stem) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return "", ErrNotFound
}
