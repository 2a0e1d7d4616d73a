package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ByLCY/slidepress/config"
	"github.com/ByLCY/slidepress/deck"
	"github.com/ByLCY/slidepress/export"
	"github.com/ByLCY/slidepress/export/browser"
	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
	canvasrenderer "github.com/ByLCY/slidepress/renderer/canvas"
	"github.com/ByLCY/slidepress/renderer/markup"
	"github.com/ByLCY/slidepress/renderer/thumbnail"
)

// Exit codes.
const (
	exitOK      = 0
	exitGeneral = 1
	exitUsage   = 2 // 参数、配置或幻灯片内容错误
	exitIO      = 3
	exitFonts   = 4 // 字体或浏览器不可用
	exitTimeout = 5
)

func main() {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	logger := newLogger(flags, os.Stderr)
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	written, err := run(ctx, flags, logger)
	if err != nil {
		stop()
		log.SetFlags(0)
		log.Printf("生成失败: %v", err)
		os.Exit(exitCode(err))
	}
	if !flags.quiet {
		for _, path := range written {
			fmt.Printf("已生成：%s\n", path)
		}
	}
}

func newLogger(f *cliFlags, w io.Writer) *slog.Logger {
	if f.quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// exitCode 按错误类别映射退出码。
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, export.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return exitTimeout
	case errors.Is(err, fonts.ErrFontUnavailable),
		errors.Is(err, browser.ErrBrowserConnect),
		errors.Is(err, browser.ErrPageLoad),
		errors.Is(err, browser.ErrPDFGeneration):
		return exitFonts
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, config.ErrConfigParse),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, deck.ErrUnsupportedFormat),
		errors.Is(err, deck.ErrEmptyDeck),
		errors.Is(err, deck.ErrInputTooLarge),
		errors.Is(err, deck.ErrParse),
		errors.Is(err, deck.ErrUnknownLayout),
		errors.Is(err, deck.ErrData),
		errors.Is(err, export.ErrOverflow):
		return exitUsage
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return exitIO
	default:
		return exitGeneral
	}
}

// run 串联配置、解析、数据绑定、字体获取、布局与渲染，返回写出的文件。
func run(ctx context.Context, f *cliFlags, logger *slog.Logger) ([]string, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, err
	}

	d, err := deck.Load(f.input)
	if err != nil {
		return nil, err
	}
	if f.data != "" {
		data, err := deck.LoadData(f.data)
		if err != nil {
			return nil, err
		}
		for _, missing := range d.Bind(data) {
			logger.Warn("unresolved placeholder", slog.String("path", missing))
		}
	}

	set, err := fonts.Acquire(ctx, cfg.FontSources())
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	measure, r, closer, err := buildRenderer(cfg, set, timeout, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer()
	}

	exp := export.New(measure, export.Options{
		Workers: cfg.Export.Workers,
		Timeout: timeout,
		Strict:  cfg.Export.Strict,
		Logger:  logger,
	})

	if f.debug != "" {
		doc, err := exp.Document(ctx, d)
		if err != nil {
			return nil, err
		}
		if err := layout.WriteDebugJSON(doc, f.debug); err != nil {
			return nil, fmt.Errorf("写入调试 JSON 失败: %w", err)
		}
		logger.Debug("layout debug written", slog.String("path", f.debug))
	}

	out := outputPath(f, cfg)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	if thumbs, ok := r.(*thumbnail.Renderer); ok {
		return writeThumbnails(ctx, exp, d, thumbs, out)
	}

	data, err := exp.Export(ctx, d, r)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return nil, fmt.Errorf("写入输出文件失败: %w", err)
	}
	return []string{out}, nil
}

func loadConfig(f *cliFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.config != "" {
		loaded, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := f.applyTo(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRenderer 按输出格式选择渲染器与度量。PDF、HTML 使用精确度量，缩略图使用估算度量。
func buildRenderer(cfg *config.Config, set *fonts.Set, timeout time.Duration, logger *slog.Logger) (layout.Measurer, renderer.Renderer, func(), error) {
	switch cfg.Output.Format {
	case config.FormatHTML:
		if !cfg.EmbedFonts() {
			logger.Warn("fonts not embedded: browsers fall back to local faces and the preview may not match the PDF")
		}
		m, err := fonts.NewExact(set)
		if err != nil {
			return nil, nil, nil, err
		}
		r, err := markup.NewRenderer(markup.Options{
			Fonts:      set,
			EmbedFonts: cfg.EmbedFonts(),
			Minify:     cfg.Markup.Minify,
			Scale:      cfg.Markup.Scale,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return m, r, nil, nil
	case config.FormatPNG:
		r, err := thumbnail.NewRenderer(thumbnail.Options{Fonts: set, Width: cfg.Thumbnail.Width})
		if err != nil {
			return nil, nil, nil, err
		}
		return fonts.Approximate{}, r, nil, nil
	case config.FormatBrowserPDF:
		m, err := fonts.NewExact(set)
		if err != nil {
			return nil, nil, nil, err
		}
		p, err := browser.NewPrinter(set, browser.Options{
			Bin:       cfg.Browser.Bin,
			NoSandbox: cfg.Browser.NoSandbox,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return m, p, func() { _ = p.Close() }, nil
	default:
		r, err := canvasrenderer.NewRenderer(set)
		if err != nil {
			return nil, nil, nil, err
		}
		return r.Measurer(), r, nil, nil
	}
}

var formatExt = map[string]string{
	config.FormatPDF:        ".pdf",
	config.FormatBrowserPDF: ".pdf",
	config.FormatHTML:       ".html",
	config.FormatPNG:        ".png",
}

// outputPath 未指定 --out 时，输出到 output.dir（默认输入文件所在目录），文件名沿用输入。
func outputPath(f *cliFlags, cfg *config.Config) string {
	if f.out != "" {
		return f.out
	}
	dir := cfg.Output.Dir
	if dir == "" {
		dir = filepath.Dir(f.input)
	}
	base := strings.TrimSuffix(filepath.Base(f.input), filepath.Ext(f.input))
	return filepath.Join(dir, base+formatExt[cfg.Output.Format])
}

// writeThumbnails 每张幻灯片一个 PNG：deck.png 输出为 deck-01.png、deck-02.png ...
func writeThumbnails(ctx context.Context, exp *export.Exporter, d *deck.Deck, r *thumbnail.Renderer, out string) ([]string, error) {
	doc, err := exp.Document(ctx, d)
	if err != nil {
		return nil, err
	}
	images, err := r.RenderAll(doc)
	if err != nil {
		return nil, err
	}
	return writeNumbered(out, images)
}

func writeNumbered(out string, files [][]byte) ([]string, error) {
	ext := filepath.Ext(out)
	if ext == "" {
		ext = ".png"
	}
	stem := strings.TrimSuffix(out, filepath.Ext(out))
	width := len(fmt.Sprint(len(files)))
	if width < 2 {
		width = 2
	}
	paths := make([]string, 0, len(files))
	for i, data := range files {
		path := fmt.Sprintf("%s-%0*d%s", stem, width, i+1, ext)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("写入缩略图失败: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
