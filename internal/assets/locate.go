// ABOUTME: Game audio directory discovery
// ABOUTME: Picks the directory under a game root with the most station files
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrNoAudio is returned when no station files exist under the root
var ErrNoAudio = errors.New("unable to locate station audio files under the provided directory; select the game folder that contains the Audio assets")

// audioDirNames are checked directly under the root before a full walk
var audioDirNames = []string{"audio", "Audio", "AUDIO", "AudioPC", "audiopc"}

// CountMatches returns how many stems have a file in dir
func CountMatches(dir string, stems []string) int {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return 0
	}
	count := 0
	for _, stem := range stems {
		if _, err := findStemFile(dir, stem); err == nil {
			count++
		}
	}
	return count
}

type candidate struct {
	dir     string
	matches int
}

// Locate finds the best audio directory under root. The root itself and
// the common audio folder names are tried first; the whole tree is walked
// only when none of them match.
func Locate(root string, stems []string) (string, int, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", 0, fmt.Errorf("directory not found: %s", root)
	}

	var candidates []candidate
	add := func(dir string) {
		if n := CountMatches(dir, stems); n > 0 {
			candidates = append(candidates, candidate{dir: dir, matches: n})
		}
	}

	add(root)
	for _, name := range audioDirNames {
		add(filepath.Join(root, name))
	}

	if len(candidates) == 0 {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() && path != root {
				add(path)
			}
			return nil
		})
		if err != nil {
			return "", 0, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	if len(candidates) == 0 {
		return "", 0, ErrNoAudio
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].matches > candidates[j].matches
	})
	return candidates[0].dir, candidates[0].matches, nil
}
