// Package wrap implements the greedy line breaker shared by every renderer.
//
// Widths are measured as the sum of per-character advances plus one letter-spacing adjustment
// between each pair of adjacent characters. Words are never split: a word wider than the limit
// is emitted on its own line and overflows.
package wrap

import (
	"strings"
	"unicode/utf8"
)

// CharWidthFunc returns the advance width of a single rune.
type CharWidthFunc func(r rune) float64

// Line is one wrapped line and its measured width.
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

// LineWidth 计算一行文本的宽度：Σ字符宽度 + (字符数-1)×字间距。
func LineWidth(s string, charWidth CharWidthFunc, letterSpacing float64) float64 {
	n := 0
	total := 0.0
	for _, r := range s {
		total += charWidth(r)
		n++
	}
	if n > 1 {
		total += float64(n-1) * letterSpacing
	}
	return total
}

// Wrap 对单个段落做贪心折行。text 不应包含换行符，多段文本请使用 Paragraphs。
// 连续、行首、行尾的空格不产生空词：行文本不以空格开头或结尾，只含空格的段落得到零行。
func Wrap(text string, maxWidth float64, charWidth CharWidthFunc, letterSpacing float64) []Line {
	if text == "" {
		return nil
	}
	words := strings.Split(text, " ")
	var lines []Line
	var current string
	var currentWidth float64
	started := false

	for _, word := range words {
		if word == "" {
			continue
		}
		candidate := word
		if started {
			candidate = current + " " + word
		}
		width := LineWidth(candidate, charWidth, letterSpacing)
		if started && width > maxWidth {
			lines = append(lines, Line{Text: current, Width: currentWidth})
			current = word
			currentWidth = LineWidth(word, charWidth, letterSpacing)
			continue
		}
		current = candidate
		currentWidth = width
		started = true
	}
	if started {
		lines = append(lines, Line{Text: current, Width: currentWidth})
	}
	return lines
}

// SplitParagraphs 按显式换行拆分段落，\r\n 与 \r 统一视为 \n。空文本返回 nil。
func SplitParagraphs(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Paragraphs wraps every paragraph independently. An empty paragraph yields an empty group so
// callers can keep blank lines; empty text yields no groups.
func Paragraphs(text string, maxWidth float64, charWidth CharWidthFunc, letterSpacing float64) [][]Line {
	paras := SplitParagraphs(text)
	if len(paras) == 0 {
		return nil
	}
	out := make([][]Line, 0, len(paras))
	for _, p := range paras {
		out = append(out, Wrap(p, maxWidth, charWidth, letterSpacing))
	}
	return out
}

// Strings flattens wrapped paragraphs into plain line strings.
func Strings(paras [][]Line) []string {
	var out []string
	for _, p := range paras {
		for _, l := range p {
			out = append(out, l.Text)
		}
	}
	return out
}

// Constant returns a CharWidthFunc that gives every rune the same width.
func Constant(width float64) CharWidthFunc {
	return func(rune) float64 { return width }
}

// RuneCount is exposed for callers that need the glyph count used by LineWidth.
func RuneCount(s string) int { return utf8.RuneCountInString(s) }
