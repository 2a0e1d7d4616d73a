package layout

import (
	"strings"
	"unicode"
)

// LayoutKind 是封闭的版式枚举。未知值一律按 TitleDefault 处理。
type LayoutKind int

const (
	TitleDefault LayoutKind = iota
	Centered
	QuadrantBottom        // 标题在象限 3，正文在象限 4
	QuadrantTop           // 标题在象限 1，正文在象限 2
	QuadrantLargeBulleted // 同 QuadrantBottom，正文为大号项目符号
)

var kindNames = map[LayoutKind]string{
	TitleDefault:          "title-default",
	Centered:              "centered",
	QuadrantBottom:        "quadrant-bottom",
	QuadrantTop:           "quadrant-top",
	QuadrantLargeBulleted: "quadrant-large-bulleted",
}

// Kinds lists every known layout.
var Kinds = []LayoutKind{TitleDefault, Centered, QuadrantBottom, QuadrantTop, QuadrantLargeBulleted}

// Known reports whether k is a defined layout.
func (k LayoutKind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// Normalize maps unknown values to TitleDefault.
func (k LayoutKind) Normalize() LayoutKind {
	if k.Known() {
		return k
	}
	return TitleDefault
}

func (k LayoutKind) String() string {
	return kindNames[k.Normalize()]
}

// ParseLayoutKind 解析版式名称，大小写不敏感，"-"、"_" 与驼峰写法等价；未知名称返回 TitleDefault。
func ParseLayoutKind(s string) LayoutKind {
	k, _ := LookupLayoutKind(s)
	return k
}

// LookupLayoutKind is ParseLayoutKind that also reports whether the name was recognised.
func LookupLayoutKind(s string) (LayoutKind, bool) {
	key := canonicalKindName(s)
	for k, name := range kindNames {
		if canonicalKindName(name) == key {
			return k, true
		}
	}
	return TitleDefault, false
}

func canonicalKindName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func (k LayoutKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText never fails: unknown names decode as TitleDefault.
func (k *LayoutKind) UnmarshalText(b []byte) error {
	*k = ParseLayoutKind(string(b))
	return nil
}
