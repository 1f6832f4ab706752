package units

import (
	"math"
	"testing"
)

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		units    string
		expected float64
	}{
		{"10 m/s to mph", 10.0, MPH, 22.3694},
		{"10 m/s to kmph", 10.0, KMPH, 36.0},
		{"10 m/s to kph", 10.0, KPH, 36.0},
		{"10 m/s to mps", 10.0, MPS, 10.0},
		{"unknown units default to mps", 10.0, "unknown", 10.0},
		{"0 m/s to mph", 0.0, MPH, 0.0},
		{"sprint 9.5 m/s to kmph", 9.5, KMPH, 34.2},
		{"jog 3 m/s to mph", 3.0, MPH, 6.7108},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedMPS, tt.units)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedMPS, tt.units, result, tt.expected)
			}
		})
	}
}

func TestKmhToMps(t *testing.T) {
	if got := KmhToMps(36); math.Abs(got-10) > 1e-12 {
		t.Errorf("KmhToMps(36) = %f, want 10", got)
	}
	// round trip through ConvertSpeed
	if got := ConvertSpeed(KmhToMps(27.5), KMPH); math.Abs(got-27.5) > 1e-9 {
		t.Errorf("round trip = %f, want 27.5", got)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid mph", MPH, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "MPH", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestValidUnitsString(t *testing.T) {
	if got := ValidUnitsString(); got != "mps, mph, kmph, kph" {
		t.Errorf("ValidUnitsString() = %s", got)
	}
}

func TestLabel(t *testing.T) {
	for unit, want := range map[string]string{MPS: "m/s", MPH: "mph", KMPH: "km/h", KPH: "km/h", "furlong": "m/s"} {
		if got := Label(unit); got != want {
			t.Errorf("Label(%q) = %q, want %q", unit, got, want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00.00"},
		{-3, "00:00.00"},
		{math.NaN(), "00:00.00"},
		{0.04, "00:00.04"},
		{1.5, "00:01.50"},
		{59.999, "01:00.00"},
		{75.25, "01:15.25"},
		{3600, "60:00.00"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.seconds); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
