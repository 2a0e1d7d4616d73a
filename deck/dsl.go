package deck

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ByLCY/slidepress/dsl"
	"github.com/ByLCY/slidepress/layout"
)

func parseDSL(name string, data []byte) (*Deck, error) {
	doc, err := dsl.ParseFile(name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	d := &Deck{Name: doc.Name}
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			if err := applyMeta(&d.Meta, sec.Meta.Block); err != nil {
				return nil, err
			}
		case sec.Defaults != nil:
			if err := applyDefaults(&d.Defaults, sec.Defaults.Block); err != nil {
				return nil, err
			}
		case sec.Slide != nil:
			s, err := slideFromDSL(name, sec.Slide)
			if err != nil {
				return nil, err
			}
			d.Slides = append(d.Slides, s)
		}
	}
	return d, nil
}

func applyMeta(meta *layout.Meta, block *dsl.Block) error {
	for _, st := range block.Statements {
		a := st.Assignment
		if a == nil {
			continue
		}
		switch a.Key {
		case "title":
			meta.Title = a.Value.Text()
		case "author":
			meta.Author = a.Value.Text()
		case "subject":
			meta.Subject = a.Value.Text()
		case "creator":
			meta.Creator = a.Value.Text()
		case "keywords":
			meta.Keywords = a.Value.Strings()
		default:
			return unknownKey("meta", a)
		}
	}
	return nil
}

func applyDefaults(def *Defaults, block *dsl.Block) error {
	for _, st := range block.Statements {
		a := st.Assignment
		if a == nil {
			continue
		}
		switch a.Key {
		case "header":
			def.Header = a.Value.Text()
		case "layout":
			def.Layout = a.Value.Text()
		case "bullets":
			b, err := boolValue(a)
			if err != nil {
				return err
			}
			def.Bullets = b
		default:
			return unknownKey("defaults", a)
		}
	}
	return nil
}

// slideFromDSL 头部参数：版式名称与 bullets 标记，顺序不限。
func slideFromDSL(file string, sec *dsl.SlideSection) (Slide, error) {
	s := Slide{Source: fmt.Sprintf("%s:%d", file, sec.Pos.Line)}
	for _, p := range sec.Params {
		switch {
		case p.Value == "bullets":
			s.Bullets = boolPtr(true)
		case s.Layout == "":
			s.Layout = p.Value
		default:
			return s, fmt.Errorf("%w: %s:%d: unexpected slide parameter %q", ErrParse, file, p.Pos.Line, p.Raw)
		}
	}

	var paragraphs []string
	for _, st := range sec.Block.Statements {
		if st.Text != nil {
			paragraphs = append(paragraphs, string(st.Text.Value))
			continue
		}
		a := st.Assignment
		switch a.Key {
		case "header":
			s.Header = a.Value.Text()
		case "title":
			s.Title = a.Value.Text()
		case "body":
			paragraphs = append(paragraphs, a.Value.Strings()...)
		case "layout":
			s.Layout = a.Value.Text()
		case "bullets":
			b, err := boolValue(a)
			if err != nil {
				return s, err
			}
			s.Bullets = boolPtr(b)
		default:
			return s, unknownKey("slide", a)
		}
	}
	s.Body = strings.Join(paragraphs, "\n")
	return s, nil
}

func boolValue(a *dsl.Assignment) (bool, error) {
	switch strings.ToLower(a.Value.Text()) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %d:%d: %s expects true or false, got %q", ErrParse, a.Pos.Line, a.Pos.Column, a.Key, a.Value.Text())
	}
}

func unknownKey(section string, a *dsl.Assignment) error {
	return fmt.Errorf("%w: %d:%d: unknown %s key %q", ErrParse, a.Pos.Line, a.Pos.Column, section, a.Key)
}
