package canvasrenderer

import (
	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/layout"
)

// Glyph 是一个已定位的字符，X 为页面单位。
type Glyph struct {
	Rune rune
	X    float64
}

// Run 是一行文本的绘制计划。
type Run struct {
	Field         string // header、title 或 body
	Face          fonts.Face
	Size          float64
	LetterSpacing float64
	Text          string
	X             float64
	Baseline      float64
	Glyphs        []Glyph
}

// End returns the x coordinate where the last glyph's advance ends, without trailing spacing.
func (r Run) End(m layout.Measurer) float64 {
	if len(r.Glyphs) == 0 {
		return r.X
	}
	last := r.Glyphs[len(r.Glyphs)-1]
	return last.X + m.CharWidth(r.Face, r.Size, last.Rune)
}

// PagePlan lists everything drawn on one page, in drawing order.
type PagePlan struct {
	Runs    []Run
	Bullets []layout.Bullet
}

// Texts returns the run texts of one field in drawing order.
func (p PagePlan) Texts(field string) []string {
	var out []string
	for _, run := range p.Runs {
		if run.Field == field {
			out = append(out, run.Text)
		}
	}
	return out
}

// Plan 计算某页所有字形的位置：从行左边缘开始，每个字符后 x += 字宽 + 字间距。
// 空行不产生 Run。
func (r *Renderer) Plan(res *layout.Result) PagePlan {
	var plan PagePlan
	if res == nil {
		return plan
	}
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
			run := Run{
				Field:         f.name,
				Face:          b.Face,
				Size:          b.FontSize,
				LetterSpacing: b.LetterSpacing,
				Text:          ln.Text,
				X:             ln.X,
				Baseline:      ln.Baseline,
			}
			x := ln.X
			for _, ch := range ln.Text {
				run.Glyphs = append(run.Glyphs, Glyph{Rune: ch, X: x})
				x += r.measure.CharWidth(b.Face, b.FontSize, ch) + b.LetterSpacing
			}
			plan.Runs = append(plan.Runs, run)
		}
		plan.Bullets = append(plan.Bullets, b.Bullets()...)
	}
	return plan
}
