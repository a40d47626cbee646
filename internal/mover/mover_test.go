package mover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bagtoad/slidegen/internal/audit"
)

func writePair(t *testing.T, dir string, id string) audit.Result {
	t.Helper()
	r := audit.Result{
		Img1: filepath.Join(dir, "img1_"+id+".png"),
		Img2: filepath.Join(dir, "img2_"+id+".png"),
	}
	for _, p := range []string{r.Img1, r.Img2} {
		if err := os.WriteFile(p, []byte("fake image"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func TestMovePairs(t *testing.T) {
	dir := t.TempDir()
	results := []audit.Result{writePair(t, dir, "0"), writePair(t, dir, "3")}
	results[1].PairID = 3

	moves, err := MovePairs(dir, NoiseFolder, results, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 4 {
		t.Fatalf("expected 4 moves, got %d", len(moves))
	}
	for _, m := range moves {
		if _, err := os.Stat(m.DestPath); err != nil {
			t.Errorf("destination file missing: %s", m.DestPath)
		}
		if _, err := os.Stat(m.SourcePath); !os.IsNotExist(err) {
			t.Errorf("source file should no longer exist: %s", m.SourcePath)
		}
		if filepath.Dir(m.DestPath) != filepath.Join(dir, NoiseFolder) {
			t.Errorf("moved into %s", filepath.Dir(m.DestPath))
		}
	}
	if moves[2].PairID != 3 {
		t.Errorf("third move belongs to pair %d", moves[2].PairID)
	}
}

func TestMovePairsDryRun(t *testing.T) {
	dir := t.TempDir()
	results := []audit.Result{writePair(t, dir, "0")}

	moves, err := MovePairs(dir, NoiseFolder, results, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 {
		t.Errorf("expected 2 move results, got %d", len(moves))
	}
	if _, err := os.Stat(results[0].Img1); err != nil {
		t.Error("file should not have been moved in dry-run")
	}
	if _, err := os.Stat(filepath.Join(dir, NoiseFolder)); !os.IsNotExist(err) {
		t.Error("folder should not exist in dry-run")
	}
}

func TestMovePairsNothingFlagged(t *testing.T) {
	dir := t.TempDir()
	moves, err := MovePairs(dir, NoiseFolder, nil, false)
	if err != nil || moves != nil {
		t.Fatalf("got %v, %v", moves, err)
	}
	if _, err := os.Stat(filepath.Join(dir, NoiseFolder)); !os.IsNotExist(err) {
		t.Error("folder created with nothing to move")
	}
}

func TestMovePairsConflict(t *testing.T) {
	dir := t.TempDir()
	r := writePair(t, dir, "0")
	dest := filepath.Join(dir, NoiseFolder)
	if err := os.MkdirAll(dest, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "img1_0.png"), []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}

	moves, err := MovePairs(dir, NoiseFolder, []audit.Result{r}, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dest, "img1_0_1.png"); moves[0].DestPath != want {
		t.Errorf("expected %s, got %s", want, moves[0].DestPath)
	}
	data, err := os.ReadFile(filepath.Join(dest, "img1_0.png"))
	if err != nil || string(data) != "existing" {
		t.Error("original file was overwritten")
	}
}
