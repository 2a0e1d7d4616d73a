package markup

import "errors"

// Sentinel errors for markup rendering.
var (
	ErrFontsRequired = errors.New("embedding fonts requires an acquired font set")
	ErrTemplate      = errors.New("markup template failed")
)
