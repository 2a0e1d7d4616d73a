package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
)

// Renderer draws resolved slides into a PDF via github.com/tdewolff/canvas.
// 每个字形单独定位：x 坐标由精确度量累加得出，与解析器折行时使用的宽度完全一致。
type Renderer struct {
	set     *fonts.Set
	measure *fonts.Exact

	foreground color.Color
	background color.Color

	fontMu       sync.Mutex
	fontFamilies map[fonts.Face]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	Fonts      *fonts.Set
	Foreground color.Color // 默认 #1e1e1e
	Background color.Color // 默认白色
}

// NewRenderer creates a renderer drawing with the acquired font set.
func NewRenderer(set *fonts.Set) (*Renderer, error) {
	return NewRendererWithOptions(Options{Fonts: set})
}

// NewRendererWithOptions creates a renderer with explicit colours.
func NewRendererWithOptions(opts Options) (*Renderer, error) {
	measure, err := fonts.NewExact(opts.Fonts)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		set:          opts.Fonts,
		measure:      measure,
		foreground:   opts.Foreground,
		background:   opts.Background,
		fontFamilies: map[fonts.Face]*canvas.FontFamily{},
	}
	if r.foreground == nil {
		r.foreground = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	}
	if r.background == nil {
		r.background = canvas.White
	}
	return r, nil
}

// Measurer returns the exact measurer backing the renderer, so callers can resolve with the same
// advances the renderer will draw with.
func (r *Renderer) Measurer() *fonts.Exact { return r.measure }

// Render renders every page of doc into a single PDF byte slice.
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if err := renderer.Validate(doc); err != nil {
		return nil, err
	}
	// 预先加载全部字体，避免绘制到一半才失败
	for _, face := range fonts.Faces {
		if _, err := r.ensureFontFamily(face); err != nil {
			return nil, err
		}
	}

	width, height := geometry.PageSizeMM()
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	r.applyMeta(writer, doc.Meta)
	for i, page := range doc.Pages {
		if i > 0 {
			writer.NewPage(width, height)
		}
		c := canvas.New(width, height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianI) // 与布局一致：左下角为原点，y 轴向上

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.Meta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, res *layout.Result) error {
	width, height := geometry.PageSizeMM()
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(r.background)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	plan := r.Plan(res)
	for _, run := range plan.Runs {
		if err := r.drawRun(ctx, run); err != nil {
			return err
		}
	}
	r.drawBullets(ctx, plan.Bullets)
	return nil
}

// drawRun 是唯一的文字绘制原语：页眉、标题、正文都走这里。
func (r *Renderer) drawRun(ctx *canvas.Context, run Run) error {
	face, err := r.fontFace(run.Face, run.Size)
	if err != nil {
		return err
	}
	y := geometry.ToMM(run.Baseline)
	for _, g := range run.Glyphs {
		if unicode.IsSpace(g.Rune) {
			continue
		}
		ctx.DrawText(geometry.ToMM(g.X), y, canvas.NewTextLine(face, string(g.Rune), canvas.Left))
	}
	return nil
}

// drawBullets 绘制实心圆点项目符号。
func (r *Renderer) drawBullets(ctx *canvas.Context, bullets []layout.Bullet) {
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(r.foreground)
	for _, b := range bullets {
		// canvas.Circle 以原点为圆心
		ctx.DrawPath(geometry.ToMM(b.CX), geometry.ToMM(b.CY), canvas.Circle(geometry.ToMM(b.Radius)))
	}
}

// fontFace 创建字体面：字号从页面单位换算为 pt。
func (r *Renderer) fontFace(face fonts.Face, size float64) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(face)
	if err != nil {
		return nil, err
	}
	return family.Face(geometry.ToPt(size), r.foreground, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(face fonts.Face) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[face]; ok {
		return family, nil
	}
	data := r.set.Bytes(face)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s 字体未加载", fonts.ErrFontUnavailable, face)
	}
	family := canvas.NewFontFamily("slidepress-" + face.String())
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("%w: 加载 %s 字体 %s 失败: %v", fonts.ErrFontUnavailable, face, r.set.Source(face), err)
	}
	r.fontFamilies[face] = family
	return family, nil
}
