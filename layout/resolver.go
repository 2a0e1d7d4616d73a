package layout

import (
	"strings"

	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
	"github.com/ByLCY/slidepress/wrap"
)

// strategy 计算某一版式下的标题与正文；页眉在 Resolve 中统一处理，各版式共享。
type strategy func(content SlideContent, bullets bool, m Measurer) (title, body Block)

var strategies = map[LayoutKind]strategy{
	TitleDefault:          resolveTitleDefault,
	Centered:              resolveCentered,
	QuadrantBottom:        quadrantStrategy(geometry.Q3, geometry.Q4, false),
	QuadrantTop:           quadrantStrategy(geometry.Q1, geometry.Q2, false),
	QuadrantLargeBulleted: quadrantStrategy(geometry.Q3, geometry.Q4, true),
}

// Resolve 是纯函数：相同输入总是得到相同的 Result。未知版式按 TitleDefault 处理，
// 空字段得到零行。m 为 nil 时使用 fonts.Approximate。
func Resolve(content SlideContent, m Measurer) *Result {
	if m == nil {
		m = fonts.Approximate{}
	}
	kind := content.Layout.Normalize()
	bullets := content.UseBullets || kind == QuadrantLargeBulleted

	res := &Result{
		Kind:     kind,
		Page:     geometry.Page(),
		Header:   resolveHeader(content.Header, m),
		Bulleted: bullets,
	}
	res.Title, res.Body = strategies[kind](content, bullets, m)
	res.Overflows = detectOverflows(res)
	return res
}

// ResolveAll resolves every slide in order.
func ResolveAll(slides []SlideContent, m Measurer) []*Result {
	out := make([]*Result, 0, len(slides))
	for _, s := range slides {
		out = append(out, Resolve(s, m))
	}
	return out
}

// resolveHeader 页眉单行、不折行，换行符折叠为空格。
func resolveHeader(text string, m Measurer) Block {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	spec := blockSpec{
		style:    headerStyle,
		maxWidth: geometry.Interior().W,
		flow:     FlowDown,
		align:    AlignLeft,
	}
	s := shapedBlock{spec: spec}
	if text != "" {
		st := headerStyle
		w := wrap.LineWidth(text, func(r rune) float64 { return m.CharWidth(st.Face, st.FontSize, r) }, st.LetterSpacing)
		s.paras = []shapedParagraph{{lines: []wrap.Line{{Text: text, Width: w}}}}
		s.height = st.LineHeight
	}
	return s.place(headerAnchor(), m)
}

func resolveTitleDefault(content SlideContent, bullets bool, m Measurer) (Block, Block) {
	interior := geometry.Interior()
	titleSpec := blockSpec{style: titleStyle, maxWidth: wideMaxWidth, flow: FlowDown, align: AlignLeft}
	title := shape(content.Title, titleSpec, m).place(geometry.Point{
		X: interior.Left() - geometry.TitleOpticalNudge,
		Y: titleTop(),
	}, m)

	// 正文锚定在底边距，向上生长：最后输入的行位于最下方。
	body := shape(content.BodyText, bodySpec(wideMaxWidth, FlowUp, AlignLeft, bullets), m).place(geometry.Point{
		X: interior.Left(),
		Y: interior.Bottom(),
	}, m)
	return title, body
}

// resolveCentered 标题与正文作为一个整体围绕页面垂直中线居中，每行水平居中。
func resolveCentered(content SlideContent, bullets bool, m Measurer) (Block, Block) {
	titleShape := shape(content.Title, blockSpec{style: titleStyle, maxWidth: wideMaxWidth, flow: FlowDown, align: AlignCenter}, m)
	bodyShape := shape(content.BodyText, bodySpec(wideMaxWidth, FlowDown, AlignCenter, bullets), m)

	gap := 0.0
	if !titleShape.empty() && !bodyShape.empty() {
		gap = centeredGap
	}
	total := titleShape.height + gap + bodyShape.height
	center := geometry.PageCenter
	titleBottom := center.Y + total/2 - titleShape.height
	bodyTop := titleBottom - gap

	title := titleShape.place(geometry.Point{X: center.X, Y: titleBottom + titleShape.height}, m)
	body := bodyShape.place(geometry.Point{X: center.X, Y: bodyTop}, m)
	return title, body
}

// quadrantStrategy 标题锚定在所在象限底边并向上生长，避免跨入相邻象限；正文同理锚定在正文象限底边。
func quadrantStrategy(titleQ, bodyQ geometry.Quadrant, large bool) strategy {
	return func(content SlideContent, bullets bool, m Measurer) (Block, Block) {
		tq := geometry.QuadrantBounds(titleQ)
		bq := geometry.QuadrantBounds(bodyQ)

		titleSpec := blockSpec{style: quadrantTitleStyle, maxWidth: quadrantMaxWidth, flow: FlowUp, align: AlignLeft}
		title := shape(content.Title, titleSpec, m).place(geometry.Point{
			X: tq.Left() - geometry.TitleOpticalNudge,
			Y: tq.Bottom(),
		}, m)

		bs := bodySpec(quadrantMaxWidth, FlowUp, AlignLeft, bullets)
		if large {
			bs.style = largeBodyStyle
			bs.indent = largeBulletIndent
			bs.bulletFirstLine = true
			bs.paragraphSpacing = largeParagraphGap
		}
		body := shape(content.BodyText, bs, m).place(geometry.Point{X: bq.Left(), Y: bq.Bottom()}, m)
		return title, body
	}
}
