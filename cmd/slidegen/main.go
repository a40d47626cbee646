package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/bagtoad/slidegen/internal/config"
	"github.com/bagtoad/slidegen/internal/scanner"
	"github.com/spf13/cobra"
)

// options holds every flag; only flags the user set override the config.
type options struct {
	configPath string
	out        string
	seed       uint64
	layout     string
	size       string
	fontDir    string
	logoDir    string
	imageDir   string

	samples         int
	llm             bool
	provider        string
	vision          bool
	captionMax      int
	forceDifference bool
	noTables        bool
	numberedTables  bool

	qr bool
}

func main() {
	var o options

	rootCmd := &cobra.Command{
		Use:   "slidegen",
		Short: "Generate synthetic presentation-slide datasets",
		Long: `slidegen renders synthetic presentation slides for training models
that judge visual consistency.

In pairs mode it writes balanced pairs of slides labelled by whether they
share a style and whether they share a font. In captions mode it writes
feature-complete slides narrated by a language model.

Configuration is read from --config, else ~/.slidegen/config.yaml (or
.toml), else built-in defaults. Flags override the configuration.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	pf.StringVarP(&o.out, "out", "o", "", "Output directory")
	pf.Uint64Var(&o.seed, "seed", 0, "Random seed (0 picks one from the clock)")
	pf.StringVar(&o.layout, "layout", "", "Layout preset: compact (224x224) or wide (1024x768)")
	pf.StringVar(&o.size, "size", "", "Canvas size as WIDTHxHEIGHT, overriding the layout's")
	pf.StringVar(&o.fontDir, "font-dir", "", "Use every .ttf/.otf under this directory as the font pool")
	pf.StringVar(&o.logoDir, "logo-dir", "", "Use every image in this directory as the logo pool")
	pf.StringVar(&o.imageDir, "image-dir", "", "Use every image in this directory as the inline image pool")

	rootCmd.AddCommand(
		pairsCmd(&o),
		captionsCmd(&o),
		assetsCmd(&o),
		auditCmd(&o),
		serveCmd(&o),
		doctorCmd(&o),
		configCmd(&o),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// generationFlags registers the flags shared by pairs and captions.
func generationFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.IntVarP(&o.samples, "samples", "n", 0, "Number of samples to generate")
	f.BoolVar(&o.llm, "llm", false, "Generate slide text with a language model")
	f.StringVar(&o.provider, "provider", "", "Language model provider: openai, deepseek or ollama")
	f.BoolVar(&o.numberedTables, "numbered-tables", false, `Fill tables with "Column N" / "Data r-c" instead of random words`)
}

// loadConfig resolves the configuration and applies the flags that were set.
// It does not validate; callers decide how to report invalid settings.
func loadConfig(cmd *cobra.Command, o *options) (config.Config, string, error) {
	cfg, src, err := config.Resolve(o.configPath)
	if err != nil {
		return cfg, src, err
	}

	flags := cmd.Flags()
	if flags.Changed("layout") {
		cfg.ApplyLayout(o.layout)
	}
	if flags.Changed("size") {
		w, h, err := parseSize(o.size)
		if err != nil {
			return cfg, src, err
		}
		cfg.Width, cfg.Height = w, h
	}
	if flags.Changed("out") {
		cfg.OutDir = o.out
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("samples") {
		cfg.Samples = o.samples
	}
	if flags.Changed("llm") {
		cfg.LLM.Enabled = o.llm
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider = o.provider
	}
	if flags.Changed("vision") {
		cfg.LLM.Vision = o.vision
	}
	if flags.Changed("caption-max") {
		cfg.LLM.CaptionMaxLen = o.captionMax
	}
	if flags.Changed("force-difference") {
		cfg.ForceDifference = o.forceDifference
	}
	if flags.Changed("no-tables") {
		cfg.IncludeTables = !o.noTables
	}
	if flags.Changed("numbered-tables") {
		cfg.NumberedTables = o.numberedTables
	}
	if flags.Changed("qr") && o.qr {
		cfg.Placeholders = config.PlaceholderQR
	}

	if o.fontDir != "" {
		res, err := scanner.Fonts(o.fontDir)
		if err != nil {
			return cfg, src, fmt.Errorf("font directory: %w", err)
		}
		cfg.Fonts = res.Paths
	}
	if o.logoDir != "" {
		res, err := scanner.Images(o.logoDir)
		if err != nil {
			return cfg, src, fmt.Errorf("logo directory: %w", err)
		}
		cfg.Logos = res.Paths
	}
	if o.imageDir != "" {
		res, err := scanner.Images(o.imageDir)
		if err != nil {
			return cfg, src, fmt.Errorf("image directory: %w", err)
		}
		cfg.Images = res.Paths
	}
	return cfg, src, nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	return w, h, nil
}

func configCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, src, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Printf("# source: %s\n%s", src, data)
			return nil
		},
	}
}
