// Package config loads slidepress settings from YAML with environment overrides.
//
// Precedence: CLI flags > environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ByLCY/slidepress/fonts"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalid        = errors.New("invalid config")
)

// Output formats.
const (
	FormatPDF        = "pdf"
	FormatHTML       = "html"
	FormatPNG        = "png"
	FormatBrowserPDF = "browser-pdf"
)

// Formats lists every supported output format.
var Formats = []string{FormatPDF, FormatHTML, FormatPNG, FormatBrowserPDF}

// Limits.
const (
	MinThumbnailWidth = 16
	MaxThumbnailWidth = 4096
	MaxWorkers        = 256
)

// Config holds all configuration for a render run.
type Config struct {
	Fonts     FontsConfig     `yaml:"fonts"`
	Output    OutputConfig    `yaml:"output"`
	Export    ExportConfig    `yaml:"export"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Markup    MarkupConfig    `yaml:"markup"`
	Browser   BrowserConfig   `yaml:"browser"`
}

// FontsConfig names the three faces: embed:<name> or a file path.
type FontsConfig struct {
	Mono    string `yaml:"mono"`
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
	BaseDir string `yaml:"baseDir"` // 相对路径的基准目录，默认为配置文件所在目录
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // 空表示与输入文件同目录
	Format string `yaml:"format"` // pdf, html, png, browser-pdf
}

// ExportConfig controls the export pipeline.
type ExportConfig struct {
	Workers int    `yaml:"workers"` // 0 表示 GOMAXPROCS
	Timeout string `yaml:"timeout"` // Go duration, eg "30s"
	Strict  bool   `yaml:"strict"`  // 存在越界或未知版式时失败
}

// ThumbnailConfig defines PNG preview options.
type ThumbnailConfig struct {
	Width int `yaml:"width"`
}

// MarkupConfig defines HTML output options.
type MarkupConfig struct {
	Minify     bool    `yaml:"minify"`
	EmbedFonts *bool   `yaml:"embedFonts"` // 默认 true；browser-pdf 总是内嵌
	Scale      float64 `yaml:"scale"`
}

// BrowserConfig defines headless browser options for browser-pdf.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`
	NoSandbox bool   `yaml:"noSandbox"`
}

// DefaultConfig returns the built-in configuration: bundled fonts, PDF output, 30s timeout.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 只填充零值字段，文件中写出的值保持不变。
func (c *Config) applyDefaults() {
	if c.Fonts.Mono == "" {
		c.Fonts.Mono = fonts.EmbedMono
	}
	if c.Fonts.Regular == "" {
		c.Fonts.Regular = fonts.EmbedRegular
	}
	if c.Fonts.Bold == "" {
		c.Fonts.Bold = fonts.EmbedBold
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatPDF
	}
	if c.Export.Timeout == "" {
		c.Export.Timeout = "30s"
	}
	if c.Thumbnail.Width == 0 {
		c.Thumbnail.Width = 480
	}
	if c.Markup.EmbedFonts == nil {
		embed := true
		c.Markup.EmbedFonts = &embed
	}
	if c.Markup.Scale == 0 {
		c.Markup.Scale = 1
	}
}

// Load reads a YAML config file and fills unset fields with defaults. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.applyDefaults()
	if cfg.Fonts.BaseDir == "" {
		cfg.Fonts.BaseDir = filepath.Dir(path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	if !validFormat(c.Output.Format) {
		return fmt.Errorf("%w: output.format %q (must be one of %s)", ErrInvalid, c.Output.Format, strings.Join(Formats, ", "))
	}
	if c.Export.Workers < 0 || c.Export.Workers > MaxWorkers {
		return fmt.Errorf("%w: export.workers %d (must be 0..%d)", ErrInvalid, c.Export.Workers, MaxWorkers)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if w := c.Thumbnail.Width; w != 0 && (w < MinThumbnailWidth || w > MaxThumbnailWidth) {
		return fmt.Errorf("%w: thumbnail.width %d (must be %d..%d)", ErrInvalid, w, MinThumbnailWidth, MaxThumbnailWidth)
	}
	if c.Markup.Scale < 0 {
		return fmt.Errorf("%w: markup.scale must not be negative", ErrInvalid)
	}
	for name, src := range map[string]string{"mono": c.Fonts.Mono, "regular": c.Fonts.Regular, "bold": c.Fonts.Bold} {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("%w: fonts.%s is empty", ErrInvalid, name)
		}
	}
	return nil
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// EmbedFonts reports whether HTML output carries the fonts as @font-face data URLs.
func (c *Config) EmbedFonts() bool {
	return c.Markup.EmbedFonts == nil || *c.Markup.EmbedFonts
}

// Timeout parses export.timeout. "0" disables the deadline.
func (c *Config) Timeout() (time.Duration, error) {
	s := strings.TrimSpace(c.Export.Timeout)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: export.timeout %q", ErrInvalid, c.Export.Timeout)
	}
	return d, nil
}

// FontSources converts the font settings for fonts.Acquire.
func (c *Config) FontSources() fonts.Sources {
	return fonts.Sources{
		Mono:    fonts.Resource{Src: c.Fonts.Mono},
		Regular: fonts.Resource{Src: c.Fonts.Regular},
		Bold:    fonts.Resource{Src: c.Fonts.Bold},
		BaseDir: c.Fonts.BaseDir,
	}
}

// Environment variables recognised by ApplyEnv.
const (
	EnvWorkers    = "SLIDEPRESS_WORKERS"
	EnvTimeout    = "SLIDEPRESS_TIMEOUT"
	EnvBrowserBin = "ROD_BROWSER_BIN"
)

// ApplyEnv overrides settings from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		w, err := strconv.Atoi(v)
		if err != nil || w < 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvWorkers, v)
		}
		c.Export.Workers = w
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		c.Export.Timeout = v
	}
	if v, ok := lookup(EnvBrowserBin); ok && v != "" {
		c.Browser.Bin = v
	}
	return c.Validate()
}
