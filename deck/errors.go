package deck

import "errors"

// Sentinel errors for deck loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported deck format")
	ErrEmptyDeck         = errors.New("deck has no slides")
	ErrInputTooLarge     = errors.New("deck input exceeds maximum size")
	ErrParse             = errors.New("deck parse failed")
	ErrUnknownLayout     = errors.New("unknown layout")
	ErrData              = errors.New("binding data invalid")
)
