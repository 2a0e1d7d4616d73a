package renderer

import (
	"errors"

	"github.com/ByLCY/slidepress/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF、HTML 或图像。
// Render 返回生成的二进制数据以及可能的错误。渲染器只读取解析结果，不重新折行。
type Renderer interface {
	Render(doc *layout.Document) ([]byte, error)
}

// ErrEmptyDocument is returned when there is nothing to draw.
var ErrEmptyDocument = errors.New("document has no pages")

// Validate rejects nil documents, documents without pages and nil pages.
func Validate(doc *layout.Document) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrEmptyDocument
	}
	for _, p := range doc.Pages {
		if p == nil {
			return ErrEmptyDocument
		}
	}
	return nil
}
