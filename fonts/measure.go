package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Metrics 为指定字号下的纵向度量（页面单位，均为正数）。
type Metrics struct {
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Height is ascent plus descent.
func (m Metrics) Height() float64 { return m.Ascent + m.Descent }

// ApproxCharWidthFactor 估算每个字符宽度为字号的 0.56 倍（125 单位字号约 70 单位）。
const ApproxCharWidthFactor = 0.56

// Approximate 使用固定平均字宽，仅用于缩略图等不导出的预览。
type Approximate struct{}

func (Approximate) CharWidth(_ Face, size float64, _ rune) float64 {
	return size * ApproxCharWidthFactor
}

func (Approximate) Metrics(_ Face, size float64) Metrics {
	return Metrics{Ascent: size * 0.8, Descent: size * 0.2}
}

// Exact measures with the real glyph advances of an acquired Set. Advances are read at
// ppem = unitsPerEm without hinting, so results are font units scaled linearly by size.
type Exact struct {
	set     *Set
	upem    [faceCount]float64
	ascent  [faceCount]float64 // font units
	descent [faceCount]float64
	pool    sync.Pool
}

// NewExact 基于已获取的字体集合创建精确度量器。
func NewExact(set *Set) (*Exact, error) {
	if set == nil {
		return nil, ErrNilSet
	}
	e := &Exact{set: set}
	var buf sfnt.Buffer
	for _, face := range Faces {
		f := set.font(face)
		if f == nil {
			return nil, fmt.Errorf("%w: %s 字体未加载", ErrFontUnavailable, face)
		}
		e.upem[face] = float64(f.UnitsPerEm())
		m, err := f.Metrics(&buf, e.ppem(face), font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("%w: 读取 %s 字体度量失败: %v", ErrFontUnavailable, face, err)
		}
		e.ascent[face] = fixedToFloat(m.Ascent)
		e.descent[face] = fixedToFloat(m.Descent)
	}
	e.pool.New = func() any { return new(sfnt.Buffer) }
	return e, nil
}

// Set returns the font set the measurer reads from.
func (e *Exact) Set() *Set { return e.set }

func (e *Exact) ppem(face Face) fixed.Int26_6 {
	return fixed.I(int(e.upem[face]))
}

// CharWidth returns the advance of r at size. A rune without a glyph measures as .notdef.
func (e *Exact) CharWidth(face Face, size float64, r rune) float64 {
	if !face.valid() {
		face = Regular
	}
	f := e.set.font(face)
	buf := e.pool.Get().(*sfnt.Buffer)
	defer e.pool.Put(buf)

	idx, err := f.GlyphIndex(buf, r)
	if err != nil {
		return 0
	}
	adv, err := f.GlyphAdvance(buf, idx, e.ppem(face), font.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(adv) * size / e.upem[face]
}

func (e *Exact) Metrics(face Face, size float64) Metrics {
	if !face.valid() {
		face = Regular
	}
	scale := size / e.upem[face]
	return Metrics{Ascent: e.ascent[face] * scale, Descent: e.descent[face] * scale}
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
