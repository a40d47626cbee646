package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		path := filepath.Join(dir, n)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("fake"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestImages(t *testing.T) {
	dir := t.TempDir()
	images := []string{"logo.svg", "photo.jpg", "image.png", "pic.gif", "shot.bmp", "web.webp", "scan.tiff"}
	touch(t, dir, images...)
	touch(t, dir, "readme.txt", "data.csv", ".hidden.png", "nested/deep.png")

	result, err := Images(dir)
	if err != nil {
		t.Fatalf("Images failed: %v", err)
	}
	if len(result.Paths) != len(images) {
		t.Errorf("expected %d images, got %d: %v", len(images), len(result.Paths), result.Paths)
	}
	if result.SkippedCount != 2 {
		t.Errorf("expected 2 skipped, got %d", result.SkippedCount)
	}
}

func TestImagesCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	files := []string{"PHOTO.JPG", "Image.PNG", "pic.JPEG", "Badge.SVG"}
	touch(t, dir, files...)

	result, err := Images(dir)
	if err != nil {
		t.Fatalf("Images failed: %v", err)
	}
	if len(result.Paths) != len(files) {
		t.Errorf("expected %d images, got %d", len(files), len(result.Paths))
	}
}

func TestFontsRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "dejavu/DejaVuSans.ttf", "dejavu/DejaVuSans-Bold.ttf", "noto/NotoSerif.otf", "fonts.dir", ".cache/x.ttf")

	result, err := Fonts(dir)
	if err != nil {
		t.Fatalf("Fonts failed: %v", err)
	}
	if len(result.Paths) != 3 {
		t.Errorf("expected 3 fonts, got %d: %v", len(result.Paths), result.Paths)
	}
	if result.SkippedCount != 1 {
		t.Errorf("expected 1 skipped, got %d", result.SkippedCount)
	}
}

func TestScanNoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "readme.txt")

	if _, err := Images(dir); err == nil {
		t.Error("expected error for directory with no images")
	}
}

func TestScanNonexistentDir(t *testing.T) {
	if _, err := Images("/nonexistent/path/12345"); err == nil {
		t.Error("expected error for nonexistent directory")
	}
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "file.png")

	if _, err := Images(filepath.Join(dir, "file.png")); err == nil {
		t.Error("expected error when scanning a file")
	}
}
