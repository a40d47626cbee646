// Package doctor checks that the environment can produce a dataset with
// the given configuration.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/bagtoad/slidegen/internal/clip"
	"github.com/bagtoad/slidegen/internal/config"
	"github.com/bagtoad/slidegen/internal/llm"
	"github.com/bagtoad/slidegen/internal/onnxlib"
	"golang.org/x/image/font/opentype"
)

// Status is the outcome of one check.
type Status int

const (
	OK Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Warn:
		return "WARN"
	case Fail:
		return "FAIL"
	default:
		return "PASS"
	}
}

// Check is one diagnostic line. Hint says how to fix a non-OK status.
type Check struct {
	Name   string
	Status Status
	Detail string
	Hint   string
}

// Options configures Run.
type Options struct {
	Config     config.Config
	HTTPClient *http.Client
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Run performs every check. Only an unwritable output directory or an
// invalid configuration is a failure; everything else degrades gracefully
// at generation time and is reported as a warning.
func Run(ctx context.Context, opts Options) []Check {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	cfg := opts.Config

	checks := []Check{configCheck(cfg), writeCheck(cfg.OutDir), fontsCheck(cfg.Fonts)}
	checks = append(checks, assetsCheck("Logos", cfg.Logos), assetsCheck("Inline images", cfg.Images))
	checks = append(checks, llmCheck(ctx, opts))
	checks = append(checks, clipCheck())
	return checks
}

// Failed reports whether any check failed.
func Failed(checks []Check) bool {
	for _, c := range checks {
		if c.Status == Fail {
			return true
		}
	}
	return false
}

func configCheck(cfg config.Config) Check {
	c := Check{Name: "Configuration"}
	if err := cfg.Validate(); err != nil {
		c.Status, c.Detail = Fail, err.Error()
		c.Hint = "fix the config file or flags"
		return c
	}
	c.Detail = fmt.Sprintf("%dx%d %s layout, %d samples", cfg.Width, cfg.Height, cfg.Layout, cfg.Samples)
	return c
}

func writeCheck(dir string) Check {
	c := Check{Name: "Write permissions"}
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.Status, c.Detail, c.Hint = Fail, err.Error(), "choose another --out directory"
		return c
	}
	f, err := os.CreateTemp(dir, ".slidegen-write-*")
	if err != nil {
		c.Status, c.Detail, c.Hint = Fail, err.Error(), "choose another --out directory"
		return c
	}
	f.Close()
	os.Remove(f.Name())
	c.Detail = dir + " is writable"
	return c
}

func fontsCheck(fonts []string) Check {
	c := Check{Name: "Fonts"}
	var usable []string
	for _, path := range fonts {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if _, err := opentype.Parse(data); err == nil {
			usable = append(usable, filepath.Base(path))
		}
	}
	switch {
	case len(usable) == 0:
		c.Status = Warn
		c.Detail = fmt.Sprintf("none of %d fonts could be loaded; the built-in Go font will be used", len(fonts))
		c.Hint = "install fonts or set `fonts` in the config (--font-dir scans a directory)"
	case len(usable) < len(fonts):
		c.Status = Warn
		c.Detail = fmt.Sprintf("%d of %d fonts usable", len(usable), len(fonts))
		c.Hint = "missing fonts render with the built-in Go font but keep their own font label"
	default:
		c.Detail = fmt.Sprintf("%d fonts usable", len(usable))
	}
	return c
}

func assetsCheck(name string, paths []string) Check {
	c := Check{Name: name}
	var missing int
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			missing++
		}
	}
	switch {
	case len(paths) == 0:
		c.Status, c.Detail = Warn, "none configured; this element is never drawn"
	case missing > 0:
		c.Status = Warn
		c.Detail = fmt.Sprintf("%d of %d files missing", missing, len(paths))
		c.Hint = "run `slidegen assets` to create placeholders"
	default:
		c.Detail = fmt.Sprintf("%d files found", len(paths))
	}
	return c
}

func llmCheck(ctx context.Context, opts Options) Check {
	cfg := opts.Config.LLM
	c := Check{Name: "Text generation"}
	if !cfg.Enabled {
		c.Detail = "disabled; random placeholder text is used"
		return c
	}
	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		c.Status, c.Detail = Fail, err.Error()
		return c
	}

	switch provider {
	case llm.Ollama:
		return ollamaCheck(ctx, opts, c)
	case llm.DeepSeek:
		if cfg.APIKey == "" && opts.Getenv("DEEPSEEK_API_KEY") == "" {
			c.Status, c.Detail = Warn, "DEEPSEEK_API_KEY not set; fallback text will be used"
			c.Hint = "get a key at https://platform.deepseek.com"
			return c
		}
	default:
		if cfg.APIKey == "" && opts.Getenv("OPENAI_API_KEY") == "" {
			c.Status, c.Detail = Warn, "OPENAI_API_KEY not set; fallback text will be used"
			c.Hint = "get a key at https://platform.openai.com/api-keys"
			return c
		}
	}
	c.Detail = fmt.Sprintf("%s API key configured", provider)
	return c
}

func ollamaCheck(ctx context.Context, opts Options, c Check) Check {
	base := opts.Config.LLM.BaseURL
	if base == "" {
		base = opts.Getenv("OLLAMA_URL")
	}
	if base == "" {
		base = "http://localhost:11434/api/generate"
	}
	u, err := url.Parse(base)
	if err != nil {
		c.Status, c.Detail = Warn, fmt.Sprintf("invalid Ollama URL %q", base)
		return c
	}
	u.Path = "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		c.Status, c.Detail = Warn, err.Error()
		return c
	}
	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		c.Status, c.Detail = Warn, "Ollama not reachable at "+u.Host
		c.Hint = "install from https://ollama.com and run `ollama serve`"
		return c
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.Status, c.Detail = Warn, fmt.Sprintf("Ollama answered HTTP %d", resp.StatusCode)
		return c
	}
	c.Detail = "Ollama reachable at " + u.Host
	return c
}

func clipCheck() Check {
	c := Check{Name: "CLIP audit model"}
	missing, err := clip.Missing()
	if err != nil {
		c.Status, c.Detail = Warn, err.Error()
		return c
	}
	runtime := "embedded ONNX Runtime"
	if !onnxlib.Embedded() {
		runtime = clip.DefaultRuntimePath()
		if _, err := os.Stat(runtime); err != nil {
			c.Status = Warn
			c.Detail = "ONNX Runtime not found at " + runtime
			c.Hint = "only needed for `slidegen audit --clip`; pass --onnx-lib to point at it"
			return c
		}
	}
	if len(missing) > 0 {
		c.Status = Warn
		c.Detail = fmt.Sprintf("%d model files not downloaded yet", len(missing))
		c.Hint = "`slidegen audit --clip` downloads them on first use"
		return c
	}
	c.Detail = "model ready, using " + runtime
	return c
}
