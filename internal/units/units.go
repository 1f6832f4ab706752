// Package units provides speed unit conversion and match clock formatting.
package units

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits lists the accepted speed unit names.
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid reports whether unit names a known speed unit. Names are
// case sensitive.
func IsValid(unit string) bool {
	return slices.Contains(ValidUnits, unit)
}

// ValidUnitsString lists the unit names for flag help and errors.
func ValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// Label returns the display suffix of a unit.
func Label(unit string) string {
	switch unit {
	case MPH:
		return "mph"
	case KMPH, KPH:
		return "km/h"
	default:
		return "m/s"
	}
}

// ConvertSpeed converts a speed from meters per second to the target units.
// The pipeline and the database keep speeds in m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// KmhToMps converts km/h to m/s.
func KmhToMps(kmh float64) float64 {
	return kmh / 3.6
}

// FormatClock renders a duration in seconds as mm:ss.cc. Negative and
// non-finite inputs render as 00:00.00.
func FormatClock(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00.00"
	}
	centis := int64(math.Round(seconds * 100))
	minutes := centis / 6000
	centis -= minutes * 6000
	return fmt.Sprintf("%02d:%02d.%02d", minutes, centis/100, centis%100)
}
