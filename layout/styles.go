package layout

import (
	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
)

// 各版式固定的字体参数（页面单位）。
var (
	headerStyle = TextStyle{Face: fonts.Mono, FontSize: 24, LineHeight: 40, LetterSpacing: 2}

	titleStyle         = TextStyle{Face: fonts.Bold, FontSize: 125, LineHeight: 120, LetterSpacing: -5}
	quadrantTitleStyle = TextStyle{Face: fonts.Bold, FontSize: 96, LineHeight: 96, LetterSpacing: -4}

	bodyStyle      = TextStyle{Face: fonts.Regular, FontSize: 40, LineHeight: 56, LetterSpacing: -1}
	largeBodyStyle = TextStyle{Face: fonts.Regular, FontSize: 56, LineHeight: 72, LetterSpacing: -1.5}
)

const (
	wideMaxWidth     = 960.0 // TitleDefault / Centered
	quadrantMaxWidth = 800.0

	centeredGap = 80.0

	bulletIndent      = 48.0
	largeBulletIndent = 72.0
	largeParagraphGap = 24.0

	bulletRadiusFactor = 0.12 // 相对字号
	bulletOffsetFactor = 0.65 // 圆点中心位于首行左侧 0.65×缩进处
)

// blockSpec 描述某一字段在某一版式下的排版参数（不含锚点）。
type blockSpec struct {
	style            TextStyle
	maxWidth         float64
	flow             Flow
	align            Align
	bullets          bool
	indent           float64
	bulletFirstLine  bool // true：圆点对齐段落首行；false：对齐整段行块的垂直中心
	paragraphSpacing float64
}

func (s blockSpec) wrapWidth() float64 {
	if s.bullets {
		return s.maxWidth - s.indent
	}
	return s.maxWidth
}

// headerAnchor 页眉固定在左上角并吸附网格：(80, 1000)。
func headerAnchor() geometry.Point {
	interior := geometry.Interior()
	return geometry.Point{
		X: geometry.SnapToGrid(interior.Left()),
		Y: geometry.SnapToGrid(interior.Top()),
	}
}

// titleTop 为 TitleDefault 标题首行顶边：页眉锚点下方三个网格（880）。
func titleTop() float64 {
	return geometry.SnapToGrid(headerAnchor().Y - 3*geometry.GridPitch)
}

func bodySpec(maxWidth float64, flow Flow, align Align, bullets bool) blockSpec {
	return blockSpec{
		style:    bodyStyle,
		maxWidth: maxWidth,
		flow:     flow,
		align:    align,
		bullets:  bullets,
		indent:   bulletIndent,
	}
}
