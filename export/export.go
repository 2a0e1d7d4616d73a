// Package export runs the deck → layout → renderer pipeline with a worker limit and a deadline.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/slidepress/deck"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
)

// Options configures an Exporter.
type Options struct {
	Workers int           // 0 表示 GOMAXPROCS
	Timeout time.Duration // 0 表示不限时
	Strict  bool          // 越界或未知版式视为错误
	Logger  *slog.Logger  // nil 时丢弃日志
}

// Exporter resolves decks with one measurer and hands the pages to a renderer.
type Exporter struct {
	measure layout.Measurer
	opts    Options
	log     *slog.Logger
}

// New creates an Exporter. A nil measurer means layout.Resolve's approximate fallback.
func New(m layout.Measurer, opts Options) *Exporter {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exporter{measure: m, opts: opts, log: log}
}

// Layout 并行解析每张幻灯片，结果按输入顺序写入各自的槽位。
func (e *Exporter) Layout(ctx context.Context, contents []layout.SlideContent) ([]*layout.Result, error) {
	results := make([]*layout.Result, len(contents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, c := range contents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = layout.Resolve(c, e.measure)
			e.log.Debug("resolved slide",
				slog.Int("slide", i+1),
				slog.String("layout", results[i].Kind.String()),
				slog.Int("lines", len(results[i].Title.Lines())+len(results[i].Body.Lines())))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, e.mapErr(err)
	}
	return results, nil
}

// Document validates the deck, resolves every slide and checks overflows.
func (e *Exporter) Document(ctx context.Context, d *deck.Deck) (*layout.Document, error) {
	if d == nil {
		return nil, ErrNoDeck
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.document(ctx, d)
}

func (e *Exporter) document(ctx context.Context, d *deck.Deck) (*layout.Document, error) {
	if err := d.Validate(); err != nil {
		if !errors.Is(err, deck.ErrUnknownLayout) {
			return nil, err
		}
		if e.opts.Strict {
			return nil, fmt.Errorf("%w: %v", ErrOverflow, err)
		}
		e.log.Warn("unknown layout falls back to title-default", slog.Any("err", err))
	}

	pages, err := e.Layout(ctx, d.Contents())
	if err != nil {
		return nil, err
	}
	if err := e.checkOverflows(pages); err != nil {
		return nil, err
	}
	return d.Document(pages), nil
}

func (e *Exporter) checkOverflows(pages []*layout.Result) error {
	var problems []string
	for i, p := range pages {
		for _, o := range p.Overflows {
			e.log.Warn("layout overflow",
				slog.Int("slide", i+1),
				slog.String("field", o.Field),
				slog.String("reason", o.Reason),
				slog.String("detail", o.Detail))
			problems = append(problems, fmt.Sprintf("slide %d %s: %s", i+1, o.Field, o.Reason))
		}
	}
	if e.opts.Strict && len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrOverflow, strings.Join(problems, "; "))
	}
	return nil
}

// Export resolves the deck and renders it. On timeout no bytes are returned.
func (e *Exporter) Export(ctx context.Context, d *deck.Deck, r renderer.Renderer) ([]byte, error) {
	if d == nil {
		return nil, ErrNoDeck
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	doc, err := e.document(ctx, d)
	if err != nil {
		return nil, err
	}
	out, err := e.render(ctx, doc, r)
	if err != nil {
		return nil, err
	}
	e.log.Info("exported deck",
		slog.String("deck", d.Name),
		slog.Int("slides", len(doc.Pages)),
		slog.Int("bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

// contextRenderer 由需要取消能力的渲染器实现（如浏览器打印）。
type contextRenderer interface {
	RenderContext(ctx context.Context, doc *layout.Document) ([]byte, error)
}

// render 渲染本身不感知 context，这里用 goroutine + select 实现超时。
func (e *Exporter) render(ctx context.Context, doc *layout.Document, r renderer.Renderer) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, e.mapErr(err)
	}
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		var data []byte
		var err error
		if cr, ok := r.(contextRenderer); ok {
			data, err = cr.RenderContext(ctx, doc)
		} else {
			data, err = r.Render(doc)
		}
		done <- result{data, err}
	}()
	select {
	case <-ctx.Done():
		return nil, e.mapErr(ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return res.data, nil
	}
}

func (e *Exporter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout > 0 {
		return context.WithTimeout(ctx, e.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (e *Exporter) mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, e.opts.Timeout)
	}
	return err
}
