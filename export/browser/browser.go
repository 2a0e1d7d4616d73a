// Package browser prints the styled markup to PDF through a headless Chromium driven by go-rod.
// The result is an independent second PDF backend for comparing against the canvas renderer.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
	"github.com/ByLCY/slidepress/renderer/markup"
)

// Sentinel errors for browser printing.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// DefaultTimeout bounds page load and printing when the caller sets no deadline.
const DefaultTimeout = 30 * time.Second

// Options configures the printer.
type Options struct {
	Bin       string // 浏览器可执行文件，空表示由 rod 自动查找或下载
	NoSandbox bool
	Timeout   time.Duration
}

// Printer implements renderer.Renderer on top of a lazily launched browser.
type Printer struct {
	opts   Options
	markup *markup.Renderer

	mu      sync.Mutex
	browser *rod.Browser
}

var _ renderer.Renderer = (*Printer)(nil)

// NewPrinter prepares a printer. Fonts are always embedded so the browser uses the same faces as
// the resolver.
func NewPrinter(set *fonts.Set, opts Options) (*Printer, error) {
	m, err := markup.NewRenderer(markup.Options{Fonts: set, EmbedFonts: true})
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Printer{opts: opts, markup: m}, nil
}

// Render implements renderer.Renderer with the default timeout.
func (p *Printer) Render(doc *layout.Document) ([]byte, error) {
	return p.RenderContext(context.Background(), doc)
}

// RenderContext renders the markup, opens it in the browser and prints every slide to one page.
func (p *Printer) RenderContext(ctx context.Context, doc *layout.Document) ([]byte, error) {
	html, err := p.markup.Render(doc)
	if err != nil {
		return nil, err
	}
	tmpPath, cleanup, err := writeTempFile(html)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return p.printFile(ctx, tmpPath)
}

func (p *Printer) printFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	browser, err := p.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer page.Close()

	timeout := p.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx).Timeout(timeout)
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return out, nil
}

// printOptions 纸张与页面同尺寸（20 × 11.25 英寸），无边距，保留背景。
func printOptions() *proto.PagePrintToPDF {
	w, h := geometry.PageSizeInches()
	zero := 0.0
	return &proto.PagePrintToPDF{
		PaperWidth:        &w,
		PaperHeight:       &h,
		MarginTop:         &zero,
		MarginBottom:      &zero,
		MarginLeft:        &zero,
		MarginRight:       &zero,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

func (p *Printer) ensureBrowser() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser != nil {
		return p.browser, nil
	}

	l := launcher.New()
	if p.opts.Bin != "" {
		l = l.Bin(p.opts.Bin)
	}
	if p.opts.NoSandbox || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	p.browser = b
	return b, nil
}

// Close releases browser resources.
func (p *Printer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.browser = nil
	return err
}

func writeTempFile(content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "slidepress-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }
	if _, err := f.Write(content); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return abs, cleanup, nil
}
