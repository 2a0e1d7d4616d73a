package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体来自 golang.org/x/image/font/gofont，随二进制一起分发。
var bundled = map[string][]byte{
	"mono":    gomono.TTF,
	"regular": goregular.TTF,
	"bold":    gobold.TTF,
}

// 内置字体的 src 写法。
const (
	EmbedMono    = "embed:mono"
	EmbedRegular = "embed:regular"
	EmbedBold    = "embed:bold"
)

// Load 返回内置字体的字节数据，name 可写为 "embed:regular" 或直接 "regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := bundled[key]
	if !ok {
		return nil, fmt.Errorf("%w: 内置字体 %s 不存在", ErrFontUnavailable, name)
	}
	return data, nil
}

// IsEmbedded reports whether src refers to a bundled font.
func IsEmbedded(src string) bool { return strings.HasPrefix(src, "embed:") }

// DefaultSources returns the bundled Go fonts for every face.
func DefaultSources() Sources {
	return Sources{
		Mono:    Resource{Src: EmbedMono},
		Regular: Resource{Src: EmbedRegular},
		Bold:    Resource{Src: EmbedBold},
	}
}
