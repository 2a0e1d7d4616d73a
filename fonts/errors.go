package fonts

import "errors"

// Sentinel errors for font acquisition.
var (
	ErrFontUnavailable = errors.New("font resource unavailable")
	ErrNilSet          = errors.New("font set is nil")
)
