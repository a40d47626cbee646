package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/bagtoad/slidegen/internal/assets"
	"github.com/bagtoad/slidegen/internal/compositor"
	"github.com/bagtoad/slidegen/internal/config"
	"github.com/bagtoad/slidegen/internal/content"
	"github.com/bagtoad/slidegen/internal/dataset"
	"github.com/bagtoad/slidegen/internal/doctor"
	"github.com/bagtoad/slidegen/internal/llm"
	"github.com/bagtoad/slidegen/internal/report"
	"github.com/bagtoad/slidegen/internal/sampler"
	"github.com/spf13/cobra"
)

func pairsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Generate labelled slide pairs for style and font consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, src, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			return runPairs(cmd.Context(), cfg, src)
		},
	}
	generationFlags(cmd, o)
	cmd.Flags().BoolVar(&o.forceDifference, "force-difference", false, "Make every differently-labelled pair differ in at least one attribute")
	cmd.Flags().BoolVar(&o.noTables, "no-tables", false, "Never draw tables")
	return cmd
}

func captionsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "captions",
		Short: "Generate feature-complete slides with presentation narration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, src, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			return runCaptions(cmd.Context(), cfg, src)
		},
	}
	generationFlags(cmd, o)
	cmd.Flags().BoolVar(&o.vision, "vision", true, "Caption from the rendered image before falling back to the slide's text")
	cmd.Flags().IntVar(&o.captionMax, "caption-max", 0, "Maximum caption length in characters")
	return cmd
}

// pipeline is everything a generation run is built from.
type pipeline struct {
	builder   *dataset.Builder
	sampler   *sampler.Sampler
	generator *llm.Generator // nil unless the llm section is enabled
	seed      uint64
}

func newPipeline(cfg config.Config) (*pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	logger := log.Default()

	p := &pipeline{seed: seed}
	var src sampler.ContentSource
	if cfg.LLM.Enabled {
		lc := cfg.LLMConfig()
		lc.Logger = logger
		gen, err := llm.New(lc, rng)
		if err != nil {
			return nil, err
		}
		p.generator = gen
		src = gen
	} else {
		r := content.NewRandom(rng)
		r.Numbered = cfg.NumberedTables
		src = r
	}

	pools, err := cfg.Pools()
	if err != nil {
		return nil, err
	}
	var opts []sampler.Option
	if cfg.ForceDifference {
		opts = append(opts, sampler.WithForceDifference())
	}
	p.sampler, err = sampler.New(pools, rng, src, opts...)
	if err != nil {
		return nil, err
	}

	copts, err := cfg.CompositorOptions()
	if err != nil {
		return nil, err
	}
	copts.Logger = logger
	p.builder, err = dataset.NewBuilder(compositor.New(copts), p.sampler, dataset.Options{
		OutDir:        cfg.OutDir,
		CaptionMaxLen: cfg.LLM.CaptionMaxLen,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// warnGenerator reports a provider error that stopped model calls mid-run.
func (p *pipeline) warnGenerator() {
	if p.generator == nil {
		return
	}
	if err := p.generator.Err(); err != nil {
		fmt.Printf("Warning: %s stopped responding; remaining text used local fallbacks: %v\n", p.generator.Provider(), err)
	}
}

func runPairs(ctx context.Context, cfg config.Config, src string) error {
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Using configuration from %s (seed %d)\n", src, p.seed)
	fmt.Printf("Generating %d pairs into %s...\n", cfg.Samples, cfg.OutDir)

	entries, err := p.builder.Pairs(ctx, cfg.Samples, func(current, total int) {
		fmt.Printf("\rRendering pair %d/%d...", current, total)
	})
	fmt.Println()
	p.warnGenerator()
	return finishPairs(cfg, entries, err)
}

// finishPairs writes the manifest for whatever was rendered. An interrupted
// run still gets metadata for its finished pairs before runErr is returned.
func finishPairs(cfg config.Config, entries []dataset.PairEntry, runErr error) error {
	if runErr != nil && len(entries) == 0 {
		return runErr
	}
	m := dataset.NewPairManifest(time.Now(), cfg, entries)
	if err := dataset.WritePairs(cfg.OutDir, m); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		fmt.Printf("Stopped early: wrote metadata for %d of %d pairs\n", len(entries), cfg.Samples)
	}
	report.Pairs(os.Stdout, entries, cfg.OutDir)
	return runErr
}

// contentOnly narrates from slide text only.
type contentOnly struct {
	*llm.Generator
}

func (contentOnly) CaptionFromImage(ctx context.Context, path string, maxLen int) (string, bool) {
	return "", false
}

func runCaptions(ctx context.Context, cfg config.Config, src string) error {
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Using configuration from %s (seed %d)\n", src, p.seed)
	if p.generator == nil {
		fmt.Println("Text generation disabled; captions will be placeholders (use --llm)")
	}

	var captioner dataset.Captioner
	switch {
	case p.generator == nil:
	case cfg.LLM.Vision:
		captioner = p.generator
	default:
		captioner = contentOnly{p.generator}
	}

	fmt.Printf("Generating %d slides into %s...\n", cfg.Samples, cfg.OutDir)
	entries, err := p.builder.Captions(ctx, cfg.Samples, captioner, func(current, total int) {
		fmt.Printf("\rRendering slide %d/%d...", current, total)
	})
	fmt.Println()
	p.warnGenerator()
	return finishCaptions(cfg, captioner != nil, entries, err)
}

// finishCaptions is finishPairs for captions mode.
func finishCaptions(cfg config.Config, captions bool, entries []dataset.CaptionEntry, runErr error) error {
	if runErr != nil && len(entries) == 0 {
		return runErr
	}
	m := dataset.NewCaptionManifest(time.Now(), cfg, captions, entries)
	if err := dataset.WriteCaptions(cfg.OutDir, m); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		fmt.Printf("Stopped early: wrote metadata for %d of %d slides\n", len(entries), cfg.Samples)
	}
	report.Captions(os.Stdout, entries, cfg.OutDir)
	return runErr
}

func assetsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Create placeholder logos and inline images for missing asset files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			res, err := assets.EnsurePlaceholders(assets.Spec{
				Logos:  cfg.Logos,
				LogoW:  cfg.LogoWidth,
				LogoH:  cfg.LogoHeight,
				Images: cfg.Images,
				QR:     cfg.Placeholders == config.PlaceholderQR,
			})
			if res != nil {
				for _, path := range res.Created {
					fmt.Printf("Created %s\n", path)
				}
				fmt.Printf("%d created, %d already present\n", len(res.Created), len(res.Existing))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&o.qr, "qr", false, "Draw placeholder logos as QR codes")
	return cmd
}

func doctorCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check fonts, assets, output permissions and model access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, src, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			fmt.Printf("Using configuration from %s\n", src)
			checks := doctor.Run(cmd.Context(), doctor.Options{Config: cfg})
			report.Doctor(os.Stdout, checks)
			if doctor.Failed(checks) {
				return fmt.Errorf("environment check failed")
			}
			return nil
		},
	}
}
