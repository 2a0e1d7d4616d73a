package fonts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// Face 标识版式中使用的三种字体：页眉等宽、正文常规、标题粗体。
type Face int

const (
	Mono Face = iota
	Regular
	Bold
	faceCount
)

// Faces lists every face in declaration order.
var Faces = []Face{Mono, Regular, Bold}

func (f Face) String() string {
	switch f {
	case Mono:
		return "mono"
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	default:
		return fmt.Sprintf("face(%d)", int(f))
	}
}

// MarshalText keeps debug JSON readable.
func (f Face) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f Face) valid() bool { return f >= Mono && f < faceCount }

// Resource can be provided either by Bytes or by Src (embed:<name> or a file path).
type Resource struct {
	Src   string `yaml:"src" json:"src"`
	Bytes []byte `yaml:"-" json:"-"`
}

// Sources 描述三种字体的来源；BaseDir 用于解析相对路径。
type Sources struct {
	Mono    Resource
	Regular Resource
	Bold    Resource
	BaseDir string
}

func (s Sources) resource(f Face) Resource {
	switch f {
	case Mono:
		return s.Mono
	case Bold:
		return s.Bold
	default:
		return s.Regular
	}
}

// Set 保存已加载并解析的字体。获取后只读，可在多个 goroutine 间共享。
type Set struct {
	data  [faceCount][]byte
	fonts [faceCount]*sfnt.Font
	srcs  [faceCount]string
}

// Acquire 是两阶段约定的第一阶段：读取并解析全部字体资源。
// 任何一种字体缺失都会返回 ErrFontUnavailable，绝不退化为估算度量。
func Acquire(ctx context.Context, src Sources) (*Set, error) {
	set := &Set{}
	for _, face := range Faces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := src.resource(face)
		data, label, err := loadResource(res, src.BaseDir, face)
		if err != nil {
			return nil, err
		}
		parsed, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: 解析 %s 字体 %s 失败: %v", ErrFontUnavailable, face, label, err)
		}
		set.data[face] = data
		set.fonts[face] = parsed
		set.srcs[face] = label
	}
	return set, nil
}

// Bundled acquires the bundled Go fonts. It cannot fail for missing files.
func Bundled() (*Set, error) {
	return Acquire(context.Background(), DefaultSources())
}

func loadResource(res Resource, baseDir string, face Face) ([]byte, string, error) {
	if len(res.Bytes) > 0 {
		label := res.Src
		if label == "" {
			label = "bytes:" + face.String()
		}
		return res.Bytes, label, nil
	}
	src := strings.TrimSpace(res.Src)
	if src == "" {
		return nil, "", fmt.Errorf("%w: %s 字体缺少 src", ErrFontUnavailable, face)
	}
	if IsEmbedded(src) {
		data, err := Load(src)
		if err != nil {
			return nil, "", err
		}
		return data, src, nil
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: 读取 %s 字体 %s 失败: %v", ErrFontUnavailable, face, src, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: %s 字体 %s 为空文件", ErrFontUnavailable, face, src)
	}
	return data, src, nil
}

// Bytes returns the raw font program for face, as loaded.
func (s *Set) Bytes(face Face) []byte {
	if s == nil || !face.valid() {
		return nil
	}
	return s.data[face]
}

// Source returns the label the face was loaded from.
func (s *Set) Source(face Face) string {
	if s == nil || !face.valid() {
		return ""
	}
	return s.srcs[face]
}

func (s *Set) font(face Face) *sfnt.Font {
	if s == nil || !face.valid() {
		return nil
	}
	return s.fonts[face]
}
