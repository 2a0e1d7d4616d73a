// Package markup renders resolved slides as a self-contained HTML document.
//
// Each placed line becomes one absolutely positioned <pre> element, so the browser never wraps
// text on its own: line breaks, positions and letter-spacing all come from the resolver.
package markup

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
)

//go:embed templates/*
var templates embed.FS

// Options configures the markup renderer.
type Options struct {
	Fonts      *fonts.Set // EmbedFonts 为 true 时必填
	EmbedFonts bool       // 以 data URL 形式内嵌 @font-face
	Minify     bool
	Scale      float64 // --slide-scale 默认值，0 表示 1
	Lang       string
}

// Renderer produces HTML from layout results.
type Renderer struct {
	opts     Options
	tmpl     *template.Template
	minifier *minify.M
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer parses the embedded template and prepares the minifier.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.EmbedFonts && opts.Fonts == nil {
		return nil, ErrFontsRequired
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	tmpl, err := template.ParseFS(templates, "templates/deck.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	r := &Renderer{opts: opts, tmpl: tmpl}
	if opts.Minify {
		m := minify.New()
		// <pre> 内容原样保留，因此行内空格不会被折叠
		m.Add("text/html", &html.Minifier{
			KeepWhitespace:   true,
			KeepEndTags:      true,
			KeepDocumentTags: true,
			KeepQuotes:       true,
		})
		m.AddFunc("text/css", css.Minify)
		r.minifier = m
	}
	return r, nil
}

type deckData struct {
	Lang       string
	Title      string
	FontFaces  template.CSS
	PageWidth  string
	PageHeight string
	Scale      string
	Slides     []slideData
}

type slideData struct {
	Index   int
	Kind    string
	Lines   []lineData
	Bullets []template.CSS
}

type lineData struct {
	Field string
	Face  string
	Style template.CSS
	Text  string
}

// Render renders the whole document.
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if err := renderer.Validate(doc); err != nil {
		return nil, err
	}
	data := deckData{
		Lang:       r.opts.Lang,
		Title:      doc.Meta.Title,
		PageWidth:  num(geometry.PageWidth),
		PageHeight: num(geometry.PageHeight),
		Scale:      num(r.opts.Scale),
		Slides:     make([]slideData, 0, len(doc.Pages)),
	}
	if r.opts.EmbedFonts {
		data.FontFaces = fontFaces(r.opts.Fonts)
	}
	for i, res := range doc.Pages {
		data.Slides = append(data.Slides, slide(i, res))
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "deck.html.tmpl", data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return r.finish(buf.Bytes())
}

// RenderSlide renders a single <section> fragment, e.g. for an editor preview.
func (r *Renderer) RenderSlide(res *layout.Result, index int) ([]byte, error) {
	if res == nil {
		return nil, renderer.ErrEmptyDocument
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "slide", slide(index, res)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return r.finish(buf.Bytes())
}

func (r *Renderer) finish(out []byte) ([]byte, error) {
	if r.minifier == nil {
		return out, nil
	}
	minified, err := r.minifier.Bytes("text/html", out)
	if err != nil {
		return nil, fmt.Errorf("压缩 HTML 失败: %w", err)
	}
	return minified, nil
}

// slide 将解析结果换算为 CSS 坐标：原点移到左上角，y 轴向下。
func slide(index int, res *layout.Result) slideData {
	sd := slideData{Index: index, Kind: res.Kind.String()}
	fields := []struct {
		name  string
		block layout.Block
	}{{"header", res.Header}, {"title", res.Title}, {"body", res.Body}}
	for _, f := range fields {
		b := f.block
		for _, ln := range b.Lines() {
			if ln.Text == "" {
				continue
			}
			sd.Lines = append(sd.Lines, lineData{
				Field: f.name,
				Face:  b.Face.String(),
				Style: lineStyle(b, ln),
				Text:  ln.Text,
			})
		}
		for _, bl := range b.Bullets() {
			sd.Bullets = append(sd.Bullets, bulletStyle(bl))
		}
	}
	return sd
}

func lineStyle(b layout.Block, ln layout.Line) template.CSS {
	var sb strings.Builder
	fmt.Fprintf(&sb, "left:%spx;top:%spx;", num(ln.X), num(geometry.PageHeight-ln.Top))
	fmt.Fprintf(&sb, "height:%spx;font-size:%spx;line-height:%spx;letter-spacing:%spx",
		num(b.LineHeight), num(b.FontSize), num(b.LineHeight), num(b.LetterSpacing))
	return template.CSS(sb.String())
}

func bulletStyle(bl layout.Bullet) template.CSS {
	d := num(2 * bl.Radius)
	return template.CSS(fmt.Sprintf("left:%spx;top:%spx;width:%spx;height:%spx",
		num(bl.CX-bl.Radius), num(geometry.PageHeight-bl.CY-bl.Radius), d, d))
}

// fontFaces 以 data URL 内嵌三种字体。
func fontFaces(set *fonts.Set) template.CSS {
	var sb strings.Builder
	for _, face := range fonts.Faces {
		data := set.Bytes(face)
		if len(data) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "@font-face { font-family: \"slidepress-%s\"; src: url(data:font/ttf;base64,%s) format(\"truetype\"); }\n",
			face, base64.StdEncoding.EncodeToString(data))
	}
	return template.CSS(sb.String())
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
