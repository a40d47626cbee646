// Package mover relocates the images of flagged pairs into a subfolder of
// the dataset, so they can be reviewed or excluded from training.
package mover

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bagtoad/slidegen/internal/audit"
)

// NoiseFolder is where label-noise pairs are moved by default.
const NoiseFolder = "label_noise"

// MoveResult records what happened to a single file.
type MoveResult struct {
	PairID     int
	SourcePath string
	DestPath   string
}

// MovePairs moves both images of every pair in results into
// baseDir/folder. With dryRun set nothing is touched but the planned moves
// are still returned.
func MovePairs(baseDir, folder string, results []audit.Result, dryRun bool) ([]MoveResult, error) {
	if len(results) == 0 {
		return nil, nil
	}
	dest := filepath.Join(baseDir, folder)
	if !dryRun {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return nil, fmt.Errorf("cannot create folder %q: %w", dest, err)
		}
	}

	var moves []MoveResult
	for _, r := range results {
		for _, src := range []string{r.Img1, r.Img2} {
			if src == "" {
				continue
			}
			target := resolveConflict(filepath.Join(dest, filepath.Base(src)), dryRun)
			if !dryRun {
				if err := os.Rename(src, target); err != nil {
					return moves, fmt.Errorf("cannot move %s to %s: %w", src, target, err)
				}
			}
			moves = append(moves, MoveResult{PairID: r.PairID, SourcePath: src, DestPath: target})
		}
	}
	return moves, nil
}

// resolveConflict appends a numeric suffix if a file already exists at path.
func resolveConflict(path string, dryRun bool) string {
	if dryRun {
		return path
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
