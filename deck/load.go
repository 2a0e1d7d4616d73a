package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxInputSize limits deck and data files (default 4MB).
var MaxInputSize = 4 << 20

// Format identifies a deck source syntax.
type Format string

const (
	FormatDSL      Format = "deck"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Extensions lists the accepted deck file extensions in display order.
var Extensions = []string{".deck", ".slides", ".yaml", ".yml", ".md", ".markdown"}

var extFormats = map[string]Format{
	".deck":     FormatDSL,
	".slides":   FormatDSL,
	".yaml":     FormatYAML,
	".yml":      FormatYAML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
}

// DetectFormat maps a file extension to a format.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if f, ok := extFormats[strings.ToLower(ext)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Load reads and parses a deck file, choosing the parser by extension.
func Load(path string) (*Deck, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := readLimited(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), format, data)
}

// Parse parses deck source in the given format. name is used in positions only.
func Parse(name string, format Format, data []byte) (*Deck, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	var (
		d   *Deck
		err error
	)
	switch format {
	case FormatDSL:
		d, err = parseDSL(name, data)
	case FormatYAML:
		d, err = parseYAML(data)
	case FormatMarkdown:
		d, err = parseMarkdown(name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return d, nil
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	if info.Size() > int64(MaxInputSize) {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrInputTooLarge, path, info.Size(), MaxInputSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	return data, nil
}
