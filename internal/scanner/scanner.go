// Package scanner collects asset files (logos, inline images, fonts) from
// directories so they can be used as attribute pools.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions are the formats the compositor can draw.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".svg":  true,
}

// FontExtensions are the single-face font formats the font cache can parse.
var FontExtensions = map[string]bool{
	".ttf": true,
	".otf": true,
}

// Result holds the output of scanning a directory.
type Result struct {
	Paths        []string
	SkippedCount int
}

// Images returns the image files directly inside dir.
func Images(dir string) (*Result, error) {
	return scan(dir, ImageExtensions, false)
}

// Fonts returns the font files in dir and its subdirectories, as laid out
// under /usr/share/fonts.
func Fonts(dir string) (*Result, error) {
	return scan(dir, FontExtensions, true)
}

func scan(dir string, exts map[string]bool, recursive bool) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	result := &Result{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != dir
		if d.IsDir() {
			if path != dir && (hidden || !recursive) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(d.Name()))] {
			result.Paths = append(result.Paths, path)
		} else {
			result.SkippedCount++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	if len(result.Paths) == 0 {
		return nil, fmt.Errorf("no matching files found in %s", dir)
	}
	return result, nil
}
