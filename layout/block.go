package layout

import (
	"strings"

	"github.com/ByLCY/slidepress/geometry"
	"github.com/ByLCY/slidepress/wrap"
)

// shapedBlock 是折行完成但尚未定位的文本块。居中版式需要先知道高度才能确定锚点。
type shapedBlock struct {
	spec   blockSpec
	paras  []shapedParagraph
	height float64
}

type shapedParagraph struct {
	lines  []wrap.Line
	bullet bool
}

func (s shapedBlock) empty() bool {
	for _, p := range s.paras {
		if len(p.lines) > 0 {
			return false
		}
	}
	return true
}

// shape 按段落折行。空段落保留为一个空行（不带项目符号），空文本不产生任何行。
func shape(text string, spec blockSpec, m Measurer) shapedBlock {
	st := spec.style
	width := func(r rune) float64 { return m.CharWidth(st.Face, st.FontSize, r) }

	out := shapedBlock{spec: spec}
	lineCount := 0
	for _, para := range wrap.SplitParagraphs(text) {
		if strings.TrimSpace(para) == "" {
			out.paras = append(out.paras, shapedParagraph{lines: []wrap.Line{{}}})
			lineCount++
			continue
		}
		lines := wrap.Wrap(para, spec.wrapWidth(), width, st.LetterSpacing)
		out.paras = append(out.paras, shapedParagraph{lines: lines, bullet: spec.bullets})
		lineCount += len(lines)
	}
	if len(out.paras) == 0 {
		return out
	}
	out.height = float64(lineCount)*st.LineHeight + float64(len(out.paras)-1)*spec.paragraphSpacing
	return out
}

// place 以锚点定位每一行：FlowDown 时锚点为块顶边，FlowUp 时锚点为块底边。
func (s shapedBlock) place(anchor geometry.Point, m Measurer) Block {
	spec := s.spec
	st := spec.style
	b := Block{
		TextStyle: st,
		Anchor:    anchor,
		MaxWidth:  spec.maxWidth,
		Flow:      spec.flow,
		Align:     spec.align,
		Height:    s.height,
	}
	if spec.bullets {
		b.Indent = spec.indent
	}
	if len(s.paras) == 0 {
		return b
	}

	met := m.Metrics(st.Face, st.FontSize)
	halfLeading := (st.LineHeight - met.Height()) / 2

	cursor := anchor.Y
	if spec.flow == FlowUp {
		cursor = anchor.Y + s.height
	}

	b.Paragraphs = make([]Paragraph, 0, len(s.paras))
	for i, sp := range s.paras {
		if i > 0 {
			cursor -= spec.paragraphSpacing
		}
		para := Paragraph{Lines: make([]Line, 0, len(sp.lines))}
		for _, wl := range sp.lines {
			para.Lines = append(para.Lines, Line{
				Text:     wl.Text,
				X:        lineX(anchor.X, wl.Width, b.Indent, spec.align),
				Top:      cursor,
				Baseline: cursor - halfLeading - met.Ascent,
				Width:    wl.Width,
			})
			cursor -= st.LineHeight
		}
		if sp.bullet && len(para.Lines) > 0 {
			para.Bullet = bulletFor(para.Lines, spec)
		}
		b.Paragraphs = append(b.Paragraphs, para)
	}
	return b
}

func lineX(anchorX, width, indent float64, align Align) float64 {
	if align == AlignCenter {
		return anchorX - width/2
	}
	return anchorX + indent
}

func bulletFor(lines []Line, spec blockSpec) *Bullet {
	lh := spec.style.LineHeight
	first := lines[0]
	cy := first.Top - lh/2
	if !spec.bulletFirstLine {
		last := lines[len(lines)-1]
		cy = (first.Top + last.Top - lh) / 2
	}
	return &Bullet{
		CX:     first.X - bulletOffsetFactor*spec.indent,
		CY:     cy,
		Radius: bulletRadiusFactor * spec.style.FontSize,
	}
}
