// Package clip loads a CLIP ONNX model and scores rendered slides against
// text descriptors. It is used to audit how visually alike a labelled pair
// really is.
package clip

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const hfBaseURL = "https://huggingface.co/Xenova/clip-vit-base-patch32/resolve/main"

// File is a model file and where to fetch it.
type File struct {
	Name   string
	URL    string
	SHA256 string // empty skips verification
}

// RequiredFiles are everything NewSession needs.
var RequiredFiles = []File{
	{Name: "model.onnx", URL: hfBaseURL + "/onnx/model.onnx"},
	{Name: "vocab.json", URL: hfBaseURL + "/vocab.json"},
	{Name: "merges.txt", URL: hfBaseURL + "/merges.txt"},
}

// ProgressFunc reports download progress. total is -1 when unknown.
type ProgressFunc func(name string, downloaded, total int64)

// ModelsDir returns ~/.slidegen/models.
func ModelsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".slidegen", "models"), nil
}

// EnsureModels downloads any missing model file into ModelsDir.
func EnsureModels(ctx context.Context, progress ProgressFunc) error {
	dir, err := ModelsDir()
	if err != nil {
		return err
	}
	return ensureFiles(ctx, http.DefaultClient, dir, RequiredFiles, progress)
}

// Missing lists the required files not yet present in ModelsDir.
func Missing() ([]string, error) {
	dir, err := ModelsDir()
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, f := range RequiredFiles {
		if _, err := os.Stat(filepath.Join(dir, f.Name)); err != nil {
			missing = append(missing, f.Name)
		}
	}
	return missing, nil
}

func ensureFiles(ctx context.Context, client *http.Client, dir string, files []File, progress ProgressFunc) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create models directory: %w", err)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		err := download(ctx, client, path, f, func(downloaded, total int64) {
			if progress != nil {
				progress(f.Name, downloaded, total)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
	}
	return nil
}

// filePath returns the path of a downloaded model file.
func filePath(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("model file not found: %s (run `slidegen audit --clip` once online to download it)", name)
	}
	return path, nil
}

// progressWriter counts bytes as they are copied.
type progressWriter struct {
	n     int64
	total int64
	fn    func(downloaded, total int64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	w.fn(w.n, w.total)
	return len(p), nil
}

func download(ctx context.Context, client *http.Client, dest string, f File, progress func(downloaded, total int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s", resp.Status)
	}

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer os.Remove(tmp)

	hasher := sha256.New()
	_, err = io.Copy(io.MultiWriter(out, hasher, &progressWriter{total: resp.ContentLength, fn: progress}), resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	if f.SHA256 != "" {
		if got := hex.EncodeToString(hasher.Sum(nil)); got != f.SHA256 {
			return fmt.Errorf("SHA256 mismatch: expected %s, got %s", f.SHA256, got)
		}
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("cannot finalize download: %w", err)
	}
	return nil
}
