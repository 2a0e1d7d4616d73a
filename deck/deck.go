// Package deck loads slide decks from .deck, YAML and Markdown sources and turns them into
// layout.SlideContent values.
package deck

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/slidepress/layout"
)

// Slide 是幻灯片的源数据，版式以名称保存，转换时再解析。
type Slide struct {
	Header  string `yaml:"header" json:"header"`
	Title   string `yaml:"title" json:"title"`
	Body    string `yaml:"body" json:"body"`
	Layout  string `yaml:"layout" json:"layout"`
	Bullets *bool  `yaml:"bullets" json:"bullets,omitempty"` // nil 表示沿用 defaults.bullets

	// Source 记录来源位置（文件:行），用于错误提示。
	Source string `yaml:"-" json:"-"`
}

// Defaults apply to every slide that leaves the field empty.
type Defaults struct {
	Header  string `yaml:"header" json:"header"`
	Layout  string `yaml:"layout" json:"layout"`
	Bullets bool   `yaml:"bullets" json:"bullets"`
}

// Deck is a parsed deck file.
type Deck struct {
	Name     string      `yaml:"name" json:"name"`
	Meta     layout.Meta `yaml:"meta" json:"meta"`
	Defaults Defaults    `yaml:"defaults" json:"defaults"`
	Slides   []Slide     `yaml:"slides" json:"slides"`
}

// Validate 检查幻灯片数量与版式名称。未知版式在排版时会退化为 TitleDefault，
// 严格模式下由调用方把这里的错误当作失败。
func (d *Deck) Validate() error {
	if d == nil || len(d.Slides) == 0 {
		return ErrEmptyDeck
	}
	if name := strings.TrimSpace(d.Defaults.Layout); name != "" {
		if _, ok := layout.LookupLayoutKind(name); !ok {
			return fmt.Errorf("%w: defaults.layout %q", ErrUnknownLayout, name)
		}
	}
	for i, s := range d.Slides {
		name := strings.TrimSpace(s.Layout)
		if name == "" {
			continue
		}
		if _, ok := layout.LookupLayoutKind(name); !ok {
			return fmt.Errorf("%w: slide %d (%s) uses %q", ErrUnknownLayout, i+1, s.where(), name)
		}
	}
	return nil
}

// UseBullets 显式设置的值优先，包括 false。
func (s Slide) UseBullets(def bool) bool {
	if s.Bullets != nil {
		return *s.Bullets
	}
	return def
}

func boolPtr(b bool) *bool { return &b }

func (s Slide) where() string {
	if s.Source == "" {
		return "unknown position"
	}
	return s.Source
}

// Contents applies defaults, normalises text and resolves layout names.
func (d *Deck) Contents() []layout.SlideContent {
	if d == nil {
		return nil
	}
	out := make([]layout.SlideContent, 0, len(d.Slides))
	for _, s := range d.Slides {
		header := s.Header
		if header == "" {
			header = d.Defaults.Header
		}
		name := s.Layout
		if strings.TrimSpace(name) == "" {
			name = d.Defaults.Layout
		}
		out = append(out, layout.SlideContent{
			Header:     NormalizeText(header),
			Title:      NormalizeText(s.Title),
			BodyText:   NormalizeText(s.Body),
			Layout:     layout.ParseLayoutKind(name),
			UseBullets: s.UseBullets(d.Defaults.Bullets),
		})
	}
	return out
}

// Document wraps resolved pages with the deck metadata.
func (d *Deck) Document(pages []*layout.Result) *layout.Document {
	meta := d.Meta
	if meta.Title == "" {
		meta.Title = d.Name
	}
	meta.Title = NormalizeText(meta.Title)
	return &layout.Document{Pages: pages, Meta: meta}
}

var newlineFolder = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeText 统一换行符并做 NFC 规范化，保证组合字符按单个字形测量。
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	return norm.NFC.String(newlineFolder.Replace(s))
}
