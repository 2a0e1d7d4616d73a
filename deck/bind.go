package deck

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadData 读取绑定数据。JSON 是 YAML 的子集，两种格式都用同一个解码器。
func LoadData(path string) (any, error) {
	raw, err := readLimited(path)
	if err != nil {
		return nil, err
	}
	return ParseData(raw)
}

// ParseData decodes JSON or YAML binding data.
func ParseData(raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrData, err)
	}
	return data, nil
}

// Bind 将 data 插入 header/title/body 与文档标题中的 ${path} 占位符。
// 返回未能解析的路径（去重、排序），占位符本身原样保留。
func (d *Deck) Bind(data any) []string {
	if d == nil || data == nil {
		return nil
	}
	missing := map[string]struct{}{}
	apply := func(s *string) {
		var miss []string
		*s, miss = Interpolate(*s, data)
		for _, m := range miss {
			missing[m] = struct{}{}
		}
	}
	apply(&d.Meta.Title)
	apply(&d.Defaults.Header)
	for i := range d.Slides {
		apply(&d.Slides[i].Header)
		apply(&d.Slides[i].Title)
		apply(&d.Slides[i].Body)
	}
	if len(missing) == 0 {
		return nil
	}
	out := make([]string, 0, len(missing))
	for m := range missing {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值，支持 items[0].name 形式的下标。
// 若路径不存在，则保留原占位符并记入第二个返回值。
func Interpolate(text string, data any) (string, []string) {
	if data == nil || !strings.Contains(text, "${") {
		return text, nil
	}
	var missing []string
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		missing = append(missing, path)
		return match
	})
	return out, missing
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			if current, ok = descendMap(current, name); !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			if current, ok = descendArray(current, idx); !ok {
				return nil, false
			}
		}
	}
	switch current.(type) {
	case map[string]any, []any:
		// 复合值无法直接显示
		return nil, false
	}
	return current, current != nil
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[any]any:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}
