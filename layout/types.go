package layout

// 该文件定义版式输入（SlideContent）与解析结果（Result），供三种渲染器与调试 JSON 共用。
// 所有坐标均为页面单位，原点在页面左下角，y 轴向上。

import (
	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
)

// SlideContent 是一张幻灯片的语义内容。解析器只读取，不修改。
type SlideContent struct {
	Header     string     `json:"header"`
	Title      string     `json:"title"`
	BodyText   string     `json:"body"`
	Layout     LayoutKind `json:"layout"`
	UseBullets bool       `json:"bullets"`
}

// Flow 描述块内行的增长方向。
type Flow int

const (
	// FlowDown：锚点为首行顶边，后续行向下排列。
	FlowDown Flow = iota
	// FlowUp：锚点为末行底边，行数增加时块向上生长。
	FlowUp
)

func (f Flow) String() string {
	if f == FlowUp {
		return "up"
	}
	return "down"
}

func (f Flow) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// Align is the horizontal alignment of every line in a block.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

func (a Align) String() string {
	if a == AlignCenter {
		return "center"
	}
	return "left"
}

func (a Align) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Line 是一行已定位的文本。
type Line struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`        // 行左边缘
	Top      float64 `json:"top"`      // 行框顶边
	Baseline float64 `json:"baseline"` // 基线
	Width    float64 `json:"width"`    // 含字间距的测量宽度
}

// Bullet is a filled disc marking the start of a paragraph.
type Bullet struct {
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	Radius float64 `json:"radius"`
}

// Paragraph groups the wrapped lines produced from one explicit line of source text.
type Paragraph struct {
	Lines  []Line  `json:"lines"`
	Bullet *Bullet `json:"bullet,omitempty"`
}

// TextStyle 为某一文本块固定的字体参数。
type TextStyle struct {
	Face          fonts.Face `json:"face"`
	FontSize      float64    `json:"fontSize"`
	LineHeight    float64    `json:"lineHeight"`
	LetterSpacing float64    `json:"letterSpacing"`
}

// Block 是 header/title/body 中任意一个字段的解析结果。
type Block struct {
	TextStyle
	Anchor     geometry.Point `json:"anchor"`
	MaxWidth   float64        `json:"maxWidth"`
	Indent     float64        `json:"indent,omitempty"` // 项目符号缩进，折行宽度为 MaxWidth-Indent
	Flow       Flow           `json:"flow"`
	Align      Align          `json:"align"`
	Paragraphs []Paragraph    `json:"paragraphs"`
	Height     float64        `json:"height"`
}

// Lines returns every placed line of the block in reading order.
func (b Block) Lines() []Line {
	var out []Line
	for _, p := range b.Paragraphs {
		out = append(out, p.Lines...)
	}
	return out
}

// Texts returns the line strings of the block in reading order.
func (b Block) Texts() []string {
	var out []string
	for _, p := range b.Paragraphs {
		for _, l := range p.Lines {
			out = append(out, l.Text)
		}
	}
	return out
}

// Bullets returns the bullet markers of the block.
func (b Block) Bullets() []Bullet {
	var out []Bullet
	for _, p := range b.Paragraphs {
		if p.Bullet != nil {
			out = append(out, *p.Bullet)
		}
	}
	return out
}

// Empty reports whether the block has nothing to draw.
func (b Block) Empty() bool {
	for _, p := range b.Paragraphs {
		if len(p.Lines) > 0 {
			return false
		}
	}
	return true
}

// Top is the upper edge of the block.
func (b Block) Top() float64 {
	if b.Flow == FlowUp {
		return b.Anchor.Y + b.Height
	}
	return b.Anchor.Y
}

// Bottom is the lower edge of the block.
func (b Block) Bottom() float64 {
	if b.Flow == FlowUp {
		return b.Anchor.Y
	}
	return b.Anchor.Y - b.Height
}

// Overflow 记录排版越界，仅作提示，不改变几何结果。
type Overflow struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Overflow reasons.
const (
	OverflowWord      = "overlong-word"
	OverflowRegion    = "region"
	OverflowCollision = "collision"
	OverflowPage      = "page"
)

// Result 是解析器的唯一输出，渲染器只读取该结构。
type Result struct {
	Kind      LayoutKind    `json:"kind"`
	Page      geometry.Rect `json:"page"`
	Header    Block         `json:"header"`
	Title     Block         `json:"title"`
	Body      Block         `json:"body"`
	Bulleted  bool          `json:"bulleted"`
	Overflows []Overflow    `json:"overflows,omitempty"`
}

// Blocks returns header, title and body in drawing order.
func (r *Result) Blocks() []Block {
	return []Block{r.Header, r.Title, r.Body}
}

// Document 是多页输出：每张幻灯片一个 Result。
type Document struct {
	Pages []*Result `json:"pages"`
	Meta  Meta      `json:"meta"`
}

// Meta 保存 PDF 元信息。
type Meta struct {
	Title    string   `json:"title" yaml:"title"`
	Author   string   `json:"author" yaml:"author"`
	Subject  string   `json:"subject" yaml:"subject"`
	Creator  string   `json:"creator" yaml:"creator"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}
