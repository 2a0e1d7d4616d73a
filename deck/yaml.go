package deck

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// parseYAML 使用严格模式解码，未知字段直接报错。
func parseYAML(data []byte) (*Deck, error) {
	var d Deck
	if len(data) == 0 {
		return nil, ErrEmptyDeck
	}
	if err := yaml.UnmarshalWithOptions(data, &d, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, yaml.FormatError(err, false, true))
	}
	for i := range d.Slides {
		d.Slides[i].Source = fmt.Sprintf("slides[%d]", i)
	}
	return &d, nil
}
