package deck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// layoutComment matches `<!-- layout: quadrant-top -->` directives.
var layoutComment = regexp.MustCompile(`<!--\s*layout\s*:\s*([A-Za-z0-9_ -]+?)\s*-->`)

// parseMarkdown 以分隔线（---）切分幻灯片：
//   - 一级标题为标题，六级标题为页眉，其余标题与段落为正文段落；
//   - 列表项各成一段，并开启项目符号；
//   - HTML 注释 <!-- layout: name --> 指定版式。
func parseMarkdown(name string, data []byte) (*Deck, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(data))

	d := &Deck{}
	cur := &mdSlide{}
	flush := func() {
		if s, ok := cur.slide(); ok {
			d.Slides = append(d.Slides, s)
		}
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if cur.line == 0 {
			cur.line = lineOf(n, data)
		}
		switch node := n.(type) {
		case *ast.ThematicBreak:
			flush()
			cur = &mdSlide{}
		case *ast.Heading:
			t := inlineText(node, data)
			switch node.Level {
			case 1:
				cur.title = append(cur.title, t)
			case 6:
				cur.header = t
			default:
				cur.body = append(cur.body, t)
			}
		case *ast.Paragraph:
			cur.body = append(cur.body, inlineText(node, data))
		case *ast.List:
			cur.bullets = true
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				cur.body = append(cur.body, listItemTexts(item, data)...)
			}
		case *ast.HTMLBlock:
			if m := layoutComment.FindSubmatch(blockLines(node, data)); m != nil {
				cur.layout = strings.TrimSpace(string(m[1]))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			cur.body = append(cur.body, strings.TrimRight(string(blockLines(node, data)), "\n"))
		case *ast.Blockquote:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				cur.body = append(cur.body, inlineText(c, data))
			}
		}
	}
	flush()

	for i := range d.Slides {
		d.Slides[i].Source = fmt.Sprintf("%s:%s", name, d.Slides[i].Source)
	}
	return d, nil
}

type mdSlide struct {
	line    int
	header  string
	title   []string
	body    []string
	layout  string
	bullets bool
}

func (m *mdSlide) slide() (Slide, bool) {
	if m.header == "" && len(m.title) == 0 && len(m.body) == 0 && m.layout == "" {
		return Slide{}, false
	}
	s := Slide{
		Header: m.header,
		Title:  strings.Join(m.title, "\n"),
		Body:   strings.Join(m.body, "\n"),
		Layout: m.layout,
		Source: fmt.Sprint(m.line),
	}
	if m.bullets {
		s.Bullets = boolPtr(true)
	}
	return s, true
}

func listItemTexts(item ast.Node, src []byte) []string {
	var parts, nested []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if l, ok := c.(*ast.List); ok {
			for sub := l.FirstChild(); sub != nil; sub = sub.NextSibling() {
				nested = append(nested, listItemTexts(sub, src)...)
			}
			continue
		}
		parts = append(parts, inlineText(c, src))
	}
	return append([]string{strings.Join(parts, " ")}, nested...)
}

// inlineText 拼接行内节点文本。软换行与硬换行都折叠为空格，一个 Markdown 段落对应一段正文。
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					sb.WriteByte(' ')
				}
			case *ast.String:
				sb.Write(t.Value)
			case *ast.AutoLink:
				sb.Write(t.Label(src))
			case *ast.RawHTML:
				// 行内 HTML 不显示
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func blockLines(n ast.Node, src []byte) []byte {
	var out []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, seg.Value(src)...)
	}
	return out
}

// lineOf returns the 1-based source line of the first line segment under n.
func lineOf(n ast.Node, src []byte) int {
	for c := n; c != nil; c = c.FirstChild() {
		if c.Type() == ast.TypeBlock && c.Lines().Len() > 0 {
			start := c.Lines().At(0).Start
			return 1 + strings.Count(string(src[:start]), "\n")
		}
		if c.FirstChild() == nil {
			break
		}
	}
	return 0
}
