// Package config provides the generator configuration: built-in presets,
// YAML and TOML config files, and the resolution order between them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bagtoad/slidegen/internal/compositor"
	"github.com/bagtoad/slidegen/internal/llm"
	"github.com/bagtoad/slidegen/internal/sampler"
	"github.com/bagtoad/slidegen/internal/slide"
	"gopkg.in/yaml.v3"
)

// Placeholder logo styles understood by the assets command.
const (
	PlaceholderBadge = "badge"
	PlaceholderQR    = "qr"
)

// LLM configures the text and caption generator.
type LLM struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Provider       string `yaml:"provider" toml:"provider" json:"provider"`
	APIKey         string `yaml:"api_key" toml:"api_key" json:"-"`
	BaseURL        string `yaml:"base_url" toml:"base_url" json:"base_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds"`
	// Vision enables captions from the rendered image in captions mode.
	Vision        bool `yaml:"vision" toml:"vision" json:"vision"`
	CaptionMaxLen int  `yaml:"caption_max_length" toml:"caption_max_length" json:"caption_max_length"`
}

// Config is everything a generation run needs. It is passed explicitly to
// the components that use it.
type Config struct {
	Samples int    `yaml:"samples" toml:"samples" json:"samples"`
	OutDir  string `yaml:"out_dir" toml:"out_dir" json:"out_dir"`
	// Seed fixes the random sequence. Zero picks one from the clock.
	Seed uint64 `yaml:"seed" toml:"seed" json:"seed"`

	Layout     string `yaml:"layout" toml:"layout" json:"layout"`
	Width      int    `yaml:"width" toml:"width" json:"width"`
	Height     int    `yaml:"height" toml:"height" json:"height"`
	LogoWidth  int    `yaml:"logo_width" toml:"logo_width" json:"logo_width"`
	LogoHeight int    `yaml:"logo_height" toml:"logo_height" json:"logo_height"`

	Fonts             []string `yaml:"fonts" toml:"fonts" json:"fonts"`
	FontSizes         []int    `yaml:"font_sizes" toml:"font_sizes" json:"font_sizes"`
	TitleFontSizes    []int    `yaml:"title_font_sizes" toml:"title_font_sizes" json:"title_font_sizes"`
	Backgrounds       []string `yaml:"background_colors" toml:"background_colors" json:"background_colors"`
	TextColors        []string `yaml:"text_colors" toml:"text_colors" json:"text_colors"`
	BorderWidths      []int    `yaml:"border_widths" toml:"border_widths" json:"border_widths"`
	BorderColor       string   `yaml:"border_color" toml:"border_color" json:"border_color"`
	Logos             []string `yaml:"logos" toml:"logos" json:"logos"`
	LogoPositions     []string `yaml:"logo_positions" toml:"logo_positions" json:"logo_positions"`
	Images            []string `yaml:"images" toml:"images" json:"images"`
	TableBorderWidths []int    `yaml:"table_border_widths" toml:"table_border_widths" json:"table_border_widths"`
	TableBorderColors []string `yaml:"table_border_colors" toml:"table_border_colors" json:"table_border_colors"`
	LineSpacings      []int    `yaml:"line_spacings" toml:"line_spacings" json:"line_spacings"`

	TableRows      sampler.Range `yaml:"table_rows" toml:"table_rows" json:"table_rows"`
	TableCols      sampler.Range `yaml:"table_cols" toml:"table_cols" json:"table_cols"`
	IncludeTables  bool          `yaml:"include_tables" toml:"include_tables" json:"include_tables"`
	NumberedTables bool          `yaml:"numbered_tables" toml:"numbered_tables" json:"numbered_tables"`
	ImageChance    float64       `yaml:"image_chance" toml:"image_chance" json:"image_chance"`

	ForceDifference bool   `yaml:"force_difference" toml:"force_difference" json:"force_difference"`
	Placeholders    string `yaml:"placeholders" toml:"placeholders" json:"placeholders"`

	LLM LLM `yaml:"llm" toml:"llm" json:"llm"`
}

// Default returns the compact 224x224 preset.
func Default() Config {
	return Config{
		Samples: 50,
		OutDir:  "data",

		Layout:     "compact",
		Width:      224,
		Height:     224,
		LogoWidth:  20,
		LogoHeight: 20,

		Fonts: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSerif.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSerif-Bold.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
		},
		FontSizes:      []int{12, 14, 16},
		TitleFontSizes: []int{20, 22, 24},
		Backgrounds: []string{
			"#FFFFFF", "#FAFAFA", "#F5F5F5", "#F0F0F0", "#E8E8E8",
			"#E0E0E0", "#D3D3D3", "#FFF8DC", "#F5F5DC", "#FDF5E6",
		},
		TextColors: []string{
			"#000000", "#0A0A0A", "#141414", "#1A1A1A", "#1F1F1F",
			"#262626", "#2C2C2C", "#333333", "#3D3D3D", "#404040",
		},
		BorderWidths:      []int{2, 3, 4, 5},
		BorderColor:       "#000000",
		Logos:             []string{"assets/logo1.png", "assets/logo2.png", "assets/logo3.png"},
		LogoPositions:     []string{"top-left", "top-right", "bottom-left", "bottom-right"},
		Images:            []string{"assets/inline1.png", "assets/inline2.png", "assets/inline3.png"},
		TableBorderWidths: []int{2, 3, 4},
		TableBorderColors: []string{
			"#000000", "#1A1A1A", "#262626", "#333333", "#404040",
			"#4D4D4D", "#555555", "#595959", "#666666",
		},
		LineSpacings: []int{1, 2},

		TableRows:     sampler.Range{Min: 2, Max: 4},
		TableCols:     sampler.Range{Min: 2, Max: 4},
		IncludeTables: true,
		ImageChance:   0.3,

		Placeholders: PlaceholderBadge,

		LLM: LLM{
			Provider:       string(llm.OpenAI),
			TimeoutSeconds: 30,
			Vision:         true,
			CaptionMaxLen:  400,
		},
	}
}

// Wide returns the 1024x768 preset of the original presentation driver.
func Wide() Config {
	c := Default()
	c.ApplyLayout("wide")
	c.Backgrounds = []string{"#FFFFFF", "#F5F5F5", "#E8E8E8", "#FAFAFA"}
	c.TextColors = []string{"#000000", "#1A1A1A", "#333333", "#2C2C2C"}
	c.BorderWidths = []int{1, 2, 3, 4}
	c.TableBorderWidths = []int{1, 2, 3, 4}
	c.TableBorderColors = []string{"#000000", "#333333", "#555555", "#777777"}
	c.TableRows = sampler.Range{Min: 2, Max: 5}
	return c
}

// ApplyLayout switches the layout preset along with the canvas, logo and
// font sizes that go with it. Unknown names are left for Validate.
func (c *Config) ApplyLayout(name string) {
	c.Layout = name
	switch strings.ToLower(name) {
	case "wide":
		c.Width, c.Height = 1024, 768
		c.LogoWidth, c.LogoHeight = 40, 40
		c.FontSizes = []int{16, 18, 20}
		c.TitleFontSizes = []int{32, 36, 40}
	case "compact", "":
		c.Width, c.Height = 224, 224
		c.LogoWidth, c.LogoHeight = 20, 20
		c.FontSizes = []int{12, 14, 16}
		c.TitleFontSizes = []int{20, 22, 24}
	}
}

// configDir returns ~/.slidegen.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".slidegen"), nil
}

// Load reads a YAML or TOML file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("cannot read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &c); err != nil {
			return c, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return c, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
	return c, nil
}

// LoadUser reads ~/.slidegen/config.yaml or ~/.slidegen/config.toml. It
// returns ok=false when neither exists.
func LoadUser() (Config, string, bool, error) {
	dir, err := configDir()
	if err != nil {
		return Config{}, "", false, err
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		c, err := Load(path)
		return c, path, true, err
	}
	return Config{}, "", false, nil
}

// Resolve returns the configuration to use and where it came from.
// Priority: explicit file > user file > defaults.
func Resolve(path string) (Config, string, error) {
	if path != "" {
		c, err := Load(path)
		return c, path, err
	}
	c, src, ok, err := LoadUser()
	if err != nil {
		return Config{}, "", err
	}
	if ok {
		return c, src, nil
	}
	return Default(), "built-in defaults", nil
}

// Validate reports the first configuration error.
func (c Config) Validate() error {
	if c.Samples < 0 {
		return fmt.Errorf("negative sample count %d", c.Samples)
	}
	if c.OutDir == "" {
		return errors.New("output directory is empty")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}
	if c.LogoWidth <= 0 || c.LogoHeight <= 0 {
		return fmt.Errorf("invalid logo size %dx%d", c.LogoWidth, c.LogoHeight)
	}
	if _, err := compositor.LayoutByName(c.Layout); err != nil {
		return err
	}
	if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
		return err
	}
	if c.Placeholders != PlaceholderBadge && c.Placeholders != PlaceholderQR {
		return fmt.Errorf("unknown placeholder style %q (want badge or qr)", c.Placeholders)
	}
	for _, group := range []struct {
		name   string
		colors []string
	}{
		{"background color", c.Backgrounds},
		{"text color", c.TextColors},
		{"border color", []string{c.BorderColor}},
		{"table border color", c.TableBorderColors},
	} {
		for _, s := range group.colors {
			if _, err := slide.ParseColor(s); err != nil {
				return fmt.Errorf("%s: %w", group.name, err)
			}
		}
	}
	for _, sizes := range [][]int{c.FontSizes, c.TitleFontSizes} {
		for _, s := range sizes {
			if s <= 0 {
				return fmt.Errorf("font size %d must be positive", s)
			}
		}
	}
	for _, group := range []struct {
		name   string
		values []int
	}{
		{"border width", c.BorderWidths},
		{"table border width", c.TableBorderWidths},
	} {
		for _, w := range group.values {
			if w < 0 {
				return fmt.Errorf("%s %d must not be negative", group.name, w)
			}
		}
	}
	for _, s := range c.LineSpacings {
		if s <= 0 {
			return fmt.Errorf("line spacing %d must be positive", s)
		}
	}
	_, err := c.Pools()
	return err
}

// Pools converts the configured value lists into sampler pools.
func (c Config) Pools() (sampler.Pools, error) {
	positions := make([]slide.LogoPosition, 0, len(c.LogoPositions))
	for _, s := range c.LogoPositions {
		p, err := slide.ParseLogoPosition(s)
		if err != nil {
			return sampler.Pools{}, err
		}
		positions = append(positions, p)
	}
	p := sampler.Pools{
		Fonts:             c.Fonts,
		FontSizes:         c.FontSizes,
		TitleFontSizes:    c.TitleFontSizes,
		Backgrounds:       c.Backgrounds,
		TextColors:        c.TextColors,
		BorderWidths:      c.BorderWidths,
		BorderColor:       c.BorderColor,
		Logos:             c.Logos,
		LogoPositions:     positions,
		Images:            c.Images,
		TableBorderWidths: c.TableBorderWidths,
		TableBorderColors: c.TableBorderColors,
		LineSpacings:      c.LineSpacings,
		TableRows:         c.TableRows,
		TableCols:         c.TableCols,
		IncludeTables:     c.IncludeTables,
		ImageChance:       c.ImageChance,
		TextLines:         sampler.Range{Min: 1, Max: 3},
	}
	if err := p.Validate(); err != nil {
		return sampler.Pools{}, err
	}
	return p, nil
}

// LLMConfig converts the llm section for llm.New. The key falls back to the
// provider's environment variable inside the generator.
func (c Config) LLMConfig() llm.Config {
	provider, _ := llm.ParseProvider(c.LLM.Provider)
	timeout := time.Duration(c.LLM.TimeoutSeconds) * time.Second
	return llm.Config{
		Provider:      provider,
		APIKey:        c.LLM.APIKey,
		BaseURL:       c.LLM.BaseURL,
		Enabled:       c.LLM.Enabled,
		Timeout:       timeout,
		VisionTimeout: 2 * timeout,
	}
}

// CompositorOptions converts the canvas settings for compositor.New.
func (c Config) CompositorOptions() (compositor.Options, error) {
	layout, err := compositor.LayoutByName(c.Layout)
	if err != nil {
		return compositor.Options{}, err
	}
	return compositor.Options{
		Layout: layout,
		Width:  c.Width,
		Height: c.Height,
		LogoW:  c.LogoWidth,
		LogoH:  c.LogoHeight,
	}, nil
}

// Marshal renders the configuration as YAML, the format written by
// `slidegen config`.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
