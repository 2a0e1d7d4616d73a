// Package thumbnail draws small PNG previews of resolved slides.
//
// Thumbnails are approximate by nature: slides are usually resolved with fonts.Approximate, drawn
// at twice the target size with the Go fonts and downsampled.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
	"github.com/ByLCY/slidepress/layout"
	"github.com/ByLCY/slidepress/renderer"
)

// DefaultWidth is the thumbnail width in pixels when Options.Width is zero.
const DefaultWidth = 480

// Options configures the thumbnail renderer.
type Options struct {
	Fonts       *fonts.Set // nil 时使用内置 Go 字体
	Width       int
	Supersample int // 默认 2
	Foreground  color.Color
	Background  color.Color
}

// Renderer rasterises layout results into PNG images.
type Renderer struct {
	opts  Options
	fonts [3]*opentype.Font
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer parses the fonts once; faces are created per render call.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 2
	}
	if opts.Foreground == nil {
		opts.Foreground = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	set := opts.Fonts
	if set == nil {
		var err error
		if set, err = fonts.Bundled(); err != nil {
			return nil, err
		}
	}
	r := &Renderer{opts: opts}
	for i, face := range fonts.Faces {
		f, err := opentype.Parse(set.Bytes(face))
		if err != nil {
			return nil, fmt.Errorf("%w: 解析 %s 字体失败: %v", fonts.ErrFontUnavailable, face, err)
		}
		r.fonts[i] = f
	}
	return r, nil
}

// Size returns the thumbnail dimensions in pixels.
func (r *Renderer) Size() (int, int) {
	w := r.opts.Width
	return w, int(math.Round(float64(w) * geometry.PageHeight / geometry.PageWidth))
}

// Render returns the PNG of the first page.
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if err := renderer.Validate(doc); err != nil {
		return nil, err
	}
	return r.RenderSlide(doc.Pages[0])
}

// RenderAll returns one PNG per page, in order.
func (r *Renderer) RenderAll(doc *layout.Document) ([][]byte, error) {
	if err := renderer.Validate(doc); err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(doc.Pages))
	for i, res := range doc.Pages {
		data, err := r.RenderSlide(res)
		if err != nil {
			return nil, fmt.Errorf("缩略图第 %d 页: %w", i+1, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// RenderSlide encodes a single slide as PNG.
func (r *Renderer) RenderSlide(res *layout.Result) ([]byte, error) {
	img, err := r.Image(res)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Image draws a slide at the supersampled size and downsamples it with Catmull-Rom.
func (r *Renderer) Image(res *layout.Result) (*image.RGBA, error) {
	if res == nil {
		return nil, renderer.ErrEmptyDocument
	}
	w, h := r.Size()
	ss := r.opts.Supersample
	big := image.NewRGBA(image.Rect(0, 0, w*ss, h*ss))
	draw.Draw(big, big.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)

	c := &surface{
		dst:   big,
		scale: float64(w*ss) / geometry.PageWidth,
		ink:   image.NewUniform(r.opts.Foreground),
		faces: map[faceKey]font.Face{},
	}
	defer c.close()

	for _, b := range res.Blocks() {
		for _, ln := range b.Lines() {
			if ln.Text == "" {
				continue
			}
			face, err := c.face(r.fonts[b.Face], b.Face, b.FontSize)
			if err != nil {
				return nil, err
			}
			c.drawLine(face, ln, b.LetterSpacing)
		}
		for _, bl := range b.Bullets() {
			c.drawDisc(bl)
		}
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(small, small.Bounds(), big, big.Bounds(), draw.Src, nil)
	return small, nil
}

type faceKey struct {
	face fonts.Face
	size float64
}

// surface 是一次绘制的上下文；字体面不可并发使用，因此按调用创建。
type surface struct {
	dst   *image.RGBA
	scale float64 // 像素/页面单位
	ink   image.Image
	faces map[faceKey]font.Face
}

func (s *surface) face(f *opentype.Font, face fonts.Face, size float64) (font.Face, error) {
	key := faceKey{face, size}
	if ff, ok := s.faces[key]; ok {
		return ff, nil
	}
	ff, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size * s.scale,
		DPI:     72, // 1pt = 1px
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s 字体面: %v", fonts.ErrFontUnavailable, face, err)
	}
	s.faces[key] = ff
	return ff, nil
}

func (s *surface) close() {
	for _, f := range s.faces {
		f.Close()
	}
}

// px 将页面坐标换算为像素坐标（y 轴翻转）。
func (s *surface) px(x, y float64) (float64, float64) {
	return x * s.scale, (geometry.PageHeight - y) * s.scale
}

func (s *surface) drawLine(face font.Face, ln layout.Line, letterSpacing float64) {
	x, y := s.px(ln.X, ln.Baseline)
	d := &font.Drawer{Dst: s.dst, Src: s.ink, Face: face}
	for _, ch := range ln.Text {
		d.Dot = fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
		d.DrawString(string(ch))
		adv, _ := face.GlyphAdvance(ch)
		x += float64(adv)/64 + letterSpacing*s.scale
	}
}

// drawDisc 用多边形近似圆形，交给 vector 光栅化。
func (s *surface) drawDisc(b layout.Bullet) {
	cx, cy := s.px(b.CX, b.CY)
	r := b.Radius * s.scale
	bounds := s.dst.Bounds()
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	const steps = 32
	for i := 0; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		px, py := float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a))
		if i == 0 {
			z.MoveTo(px, py)
			continue
		}
		z.LineTo(px, py)
	}
	z.ClosePath()
	z.Draw(s.dst, bounds, s.ink, image.Point{})
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
