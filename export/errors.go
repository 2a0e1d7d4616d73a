package export

import "errors"

// Sentinel errors for the export pipeline.
var (
	ErrTimeout  = errors.New("export timed out")
	ErrOverflow = errors.New("layout overflow in strict mode")
	ErrNoDeck   = errors.New("no deck to export")
)
