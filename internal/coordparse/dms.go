package coordparse

import (
	"fmt"
	"math"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// DecimalToDMS decomposes a decimal-degree value into magnitude DMS parts plus
// a negative flag. The flag travels separately because degrees alone cannot
// carry the sign of values between -1 and 0.
func DecimalToDMS(v float64) (models.DMS, bool) {
	negative := math.Signbit(v)
	abs := math.Abs(v)

	deg := int(abs)
	rem := (abs - float64(deg)) * 60
	min := int(rem)
	sec := (rem - float64(min)) * 60

	// Guard against floating point creep pushing seconds to 60.
	if sec >= 60-1e-9 {
		sec = 0
		min++
	}
	if min >= 60 {
		min = 0
		deg++
	}

	return models.DMS{Degrees: deg, Minutes: min, Seconds: sec}, negative
}

// DMSToDecimal is the inverse of DecimalToDMS.
func DMSToDecimal(d models.DMS, negative bool) float64 {
	value := float64(d.Degrees) + float64(d.Minutes)/60 + d.Seconds/3600
	if negative {
		value = -value
	}
	return value
}

// FormatDMS renders a canonical point as a DMS string with compass letters,
// e.g. 22°16'32.1"S 166°27'29.0"E.
func FormatDMS(p models.CanonicalPoint) string {
	return formatAxis(p.Latitude, "N", "S") + " " + formatAxis(p.Longitude, "E", "W")
}

func formatAxis(v float64, pos, neg string) string {
	d, negative := DecimalToDMS(v)
	compass := pos
	if negative {
		compass = neg
	}
	return fmt.Sprintf(`%d°%02d'%04.1f"%s`, d.Degrees, d.Minutes, d.Seconds, compass)
}
