// ABOUTME: Station audio importer
// ABOUTME: Copies located station files into a target directory and records a summary
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CacheFile is the summary written into the import target
const CacheFile = "import-cache.json"

// Import statuses
const (
	StatusCopied  = "copied"
	StatusMissing = "missing"
	StatusFailed  = "failed"
)

// Record is the outcome for one station
type Record struct {
	Stem        string `json:"stem"`
	Status      string `json:"status"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Summary describes one import run
type Summary struct {
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Expected     int       `json:"expected"`
	Found        int       `json:"found"`
	Copied       int       `json:"copied"`
	Missing      []string  `json:"missing"`
	Failures     []string  `json:"failures"`
	Details      []Record  `json:"details"`
	Target       string    `json:"target"`
	SourceRoot   string    `json:"source_root"`
	AudioDir     string    `json:"audio_dir"`
	AudioMatches int       `json:"audio_matches"`
	CacheFile    string    `json:"cache_file,omitempty"`
	CacheError   string    `json:"cache_error,omitempty"`
}

// String renders the summary for terminal output
func (s *Summary) String() string {
	lines := []string{
		fmt.Sprintf("Expected:   %d", s.Expected),
		fmt.Sprintf("Found:      %d", s.Found),
		fmt.Sprintf("Copied:     %d", s.Copied),
		fmt.Sprintf("Target dir: %s", s.Target),
		fmt.Sprintf("Source dir: %s", s.SourceRoot),
		fmt.Sprintf("Audio dir:  %s", s.AudioDir),
		fmt.Sprintf("Audio hits: %d", s.AudioMatches),
	}
	if len(s.Missing) > 0 {
		lines = append(lines, "Missing:    "+strings.Join(s.Missing, ", "))
	}
	if len(s.Failures) > 0 {
		lines = append(lines, "Failures:   "+strings.Join(s.Failures, ", "))
	}
	return strings.Join(lines, "\n")
}

// Importer copies a game's station files into a playback directory
type Importer struct {
	stems  []string
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewImporter creates an importer for the given station stems
func NewImporter(stems []string, logger *zap.SugaredLogger) *Importer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Importer{stems: stems, logger: logger, now: time.Now}
}

// Import locates the audio directory under root and copies every station
// file it finds into target. Missing stations are recorded, not fatal.
func (im *Importer) Import(ctx context.Context, root, target string) (*Summary, error) {
	audioDir, matches, err := Locate(root, im.stems)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}

	absRoot, _ := filepath.Abs(root)
	summary := &Summary{
		RunID:        uuid.New().String(),
		GeneratedAt:  im.now().UTC().Truncate(time.Second),
		Expected:     len(im.stems),
		Missing:      []string{},
		Failures:     []string{},
		Target:       target,
		SourceRoot:   absRoot,
		AudioDir:     audioDir,
		AudioMatches: matches,
	}
	log := im.logger.With("run", summary.RunID)
	log.Infow("importing station audio", "audio_dir", audioDir, "target", target)

	for _, stem := range im.stems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := Record{Stem: stem, Status: StatusMissing}
		src, err := findStemFile(audioDir, stem)
		if err != nil {
			summary.Missing = append(summary.Missing, stem)
			summary.Details = append(summary.Details, rec)
			log.Warnw("station missing", "stem", stem)
			continue
		}

		summary.Found++
		dst := filepath.Join(target, strings.ToUpper(stem)+strings.ToLower(filepath.Ext(src)))
		rec.Source = src
		rec.Destination = dst

		if err := copyFile(src, dst); err != nil {
			rec.Status = StatusFailed
			rec.Error = err.Error()
			summary.Failures = append(summary.Failures, stem)
			log.Errorw("station copy failed", "stem", stem, "error", err)
		} else {
			rec.Status = StatusCopied
			summary.Copied++
			log.Debugw("station copied", "stem", stem, "dst", dst)
		}
		summary.Details = append(summary.Details, rec)
	}

	cachePath := filepath.Join(target, CacheFile)
	if err := writeCache(cachePath, summary); err != nil {
		summary.CacheError = err.Error()
		log.Warnw("failed to write import cache", "error", err)
	} else {
		summary.CacheFile = cachePath
	}

	log.Infow("import finished", "found", summary.Found, "copied", summary.Copied, "missing", len(summary.Missing))
	return summary, nil
}

// copyFile copies src to dst, treating an identical file as already copied
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chtimes(dst, time.Now(), srcInfo.ModTime())
}

func writeCache(path string, summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
