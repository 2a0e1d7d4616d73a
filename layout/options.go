package layout

import "github.com/ByLCY/slidepress/fonts"

// Measurer 负责字符宽度与字体纵向度量。解析器本身不依赖具体字体。
// fonts.Exact（真实字形宽度）与 fonts.Approximate（平均字宽）均实现该接口。
type Measurer interface {
	CharWidth(face fonts.Face, size float64, r rune) float64
	Metrics(face fonts.Face, size float64) fonts.Metrics
}

var (
	_ Measurer = (*fonts.Exact)(nil)
	_ Measurer = fonts.Approximate{}
)
