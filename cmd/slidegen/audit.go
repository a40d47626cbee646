package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bagtoad/slidegen/internal/audit"
	"github.com/bagtoad/slidegen/internal/clip"
	"github.com/bagtoad/slidegen/internal/dataset"
	"github.com/bagtoad/slidegen/internal/mover"
	"github.com/bagtoad/slidegen/internal/report"
	"github.com/spf13/cobra"
)

func auditCmd(o *options) *cobra.Command {
	var useCLIP, quarantine, dryRun bool
	var onnxLib string

	cmd := &cobra.Command{
		Use:   "audit [dataset dir or metadata file]",
		Short: "Check a pairs dataset for label noise and visual similarity",
		Long: `audit reads dataset_metadata.json and reports how many attributes
differ per pair. Pairs labelled as different whose attributes came out
identical are flagged as label noise.

With --clip each slide is profiled by a local CLIP model and the mean
similarity of identical and different pairs is reported. With
--quarantine flagged pairs are moved into a label_noise/ subfolder.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, _, err := loadConfig(cmd, o)
				if err != nil {
					return err
				}
				path = cfg.OutDir
			}

			if dryRun && !quarantine {
				fmt.Println("--dry-run has no effect without --quarantine")
			}

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot access %s: %w", path, err)
			}
			if info.IsDir() {
				path = filepath.Join(path, dataset.MetadataFile)
			}
			dir := filepath.Dir(path)

			m, err := dataset.ReadPairs(path)
			if err != nil {
				return err
			}
			m.ResolvePaths(dir)
			fmt.Printf("Auditing %d pairs from %s\n", len(m.Dataset), path)

			opts := audit.Options{}
			if useCLIP {
				fmt.Println("Checking CLIP model...")
				err := clip.EnsureModels(cmd.Context(), func(filename string, downloaded, total int64) {
					if total > 0 {
						pct := float64(downloaded) / float64(total) * 100
						fmt.Printf("\rDownloading %s... %.0f%%", filename, pct)
					} else {
						fmt.Printf("\rDownloading %s... %d bytes", filename, downloaded)
					}
				})
				if err != nil {
					return fmt.Errorf("model setup failed: %w", err)
				}

				fmt.Println("Loading CLIP model...")
				session, err := clip.NewSession(onnxLib)
				if err != nil {
					return fmt.Errorf("cannot load CLIP model: %w", err)
				}
				defer session.Destroy()
				opts.Scorer = session
			}

			results := audit.Pairs(m.Dataset, opts, func(current, total int) {
				fmt.Printf("\rAuditing pair %d/%d...", current, total)
			})
			fmt.Println()

			noisy := audit.Noisy(results)
			var moves []mover.MoveResult
			if quarantine {
				if dryRun {
					fmt.Println("Dry run mode: no files will be moved")
				}
				moves, err = mover.MovePairs(dir, mover.NoiseFolder, noisy, dryRun)
				if err != nil {
					return err
				}
			}

			report.Audit(os.Stdout, audit.Summarize(results), noisy, moves, dryRun && quarantine)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useCLIP, "clip", false, "Score visual similarity with a local CLIP model")
	cmd.Flags().StringVar(&onnxLib, "onnx-lib", "", "Path to the ONNX Runtime shared library")
	cmd.Flags().BoolVar(&quarantine, "quarantine", false, "Move label-noise pairs into "+mover.NoiseFolder+"/")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what --quarantine would move without moving files")
	return cmd
}
