package layout

import (
	"fmt"

	"github.com/ByLCY/slidepress/geometry"
)

const overflowEpsilon = 1e-6

// detectOverflows 用解析时的度量判断越界，结果只用于提示（编辑器警告、严格模式导出）。
func detectOverflows(r *Result) []Overflow {
	var out []Overflow
	add := func(field, reason, detail string) {
		out = append(out, Overflow{Field: field, Reason: reason, Detail: detail})
	}

	for _, ln := range r.Header.Lines() {
		if ln.Width > r.Header.MaxWidth+overflowEpsilon {
			add("header", OverflowRegion, fmt.Sprintf("width %.1f exceeds %.1f", ln.Width, r.Header.MaxWidth))
		}
	}
	for _, f := range []struct {
		name  string
		block Block
	}{{"title", r.Title}, {"body", r.Body}} {
		limit := f.block.MaxWidth - f.block.Indent
		for _, ln := range f.block.Lines() {
			if ln.Width > limit+overflowEpsilon {
				add(f.name, OverflowWord, fmt.Sprintf("%q is %.1f wide, limit %.1f", ln.Text, ln.Width, limit))
			}
		}
	}

	interior := geometry.Interior()
	switch r.Kind {
	case TitleDefault:
		if !r.Title.Empty() && !r.Body.Empty() && r.Title.Bottom() < r.Body.Top()-overflowEpsilon {
			add("body", OverflowCollision, fmt.Sprintf("title bottom %.1f below body top %.1f", r.Title.Bottom(), r.Body.Top()))
		}
		if r.Title.Bottom() < interior.Bottom()-overflowEpsilon {
			add("title", OverflowPage, fmt.Sprintf("title bottom %.1f below margin", r.Title.Bottom()))
		}
		if r.Body.Top() > r.Header.Bottom()+overflowEpsilon && !r.Body.Empty() {
			add("body", OverflowPage, fmt.Sprintf("body top %.1f above header", r.Body.Top()))
		}
	case Centered:
		top := r.Title.Top()
		if r.Title.Empty() {
			top = r.Body.Top()
		}
		bottom := r.Body.Bottom()
		if r.Body.Empty() {
			bottom = r.Title.Bottom()
		}
		if top-bottom > interior.H+overflowEpsilon {
			add("body", OverflowPage, fmt.Sprintf("combined height %.1f exceeds %.1f", top-bottom, interior.H))
		}
	default:
		for _, f := range []struct {
			name  string
			block Block
		}{{"title", r.Title}, {"body", r.Body}} {
			if f.block.Height > geometry.QuadrantHeight+overflowEpsilon {
				add(f.name, OverflowRegion, fmt.Sprintf("height %.1f exceeds quadrant %.0f", f.block.Height, geometry.QuadrantHeight))
			}
		}
	}
	return out
}

// HasOverflow reports whether the result carries any overflow warning.
func (r *Result) HasOverflow() bool { return len(r.Overflows) > 0 }
