package geometry

// Page units are CSS pixels: 96 per inch. The PDF backend works in millimetres and font faces are
// created in points, so conversions happen at that boundary only.

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm

	UnitsPerInch = 96.0
	UnitToMm     = 25.4 / UnitsPerInch
	UnitToPt     = 72.0 / UnitsPerInch
)

// ToMM converts page units to millimetres.
func ToMM(u float64) float64 { return u * UnitToMm }

// ToPt converts page units to points.
func ToPt(u float64) float64 { return u * UnitToPt }

// FromMM converts millimetres to page units.
func FromMM(mm float64) float64 { return mm / UnitToMm }

// PageSizeMM returns the page size in millimetres (508 × 285.75).
func PageSizeMM() (float64, float64) {
	return ToMM(PageWidth), ToMM(PageHeight)
}

// PageSizeInches returns the page size in inches, as expected by print-to-PDF backends.
func PageSizeInches() (float64, float64) {
	return PageWidth / UnitsPerInch, PageHeight / UnitsPerInch
}
