package domain

import (
	"fmt"
	"strings"
)

// Within reports whether value satisfies the limit. Bounds are inclusive.
func (l CriticalLimit) Within(value float64) bool {
	if l.Minimum != nil && value < *l.Minimum {
		return false
	}
	if l.Maximum != nil && value > *l.Maximum {
		return false
	}
	return true
}

// Describe renders the limit the way it appears on a plan sheet,
// e.g. "min 165 °F" or "41-135 °F".
func (l CriticalLimit) Describe() string {
	units := strings.TrimSpace(l.Units)
	var bound string
	switch {
	case l.Minimum != nil && l.Maximum != nil:
		bound = fmt.Sprintf("%s-%s", formatValue(*l.Minimum), formatValue(*l.Maximum))
	case l.Minimum != nil:
		bound = "min " + formatValue(*l.Minimum)
	case l.Maximum != nil:
		bound = "max " + formatValue(*l.Maximum)
	default:
		return "unbounded"
	}
	if units == "" {
		return bound
	}
	return bound + " " + units
}

// LimitFor looks up the critical limit for a parameter name. Matching is
// case-insensitive and ignores surrounding whitespace.
func (c CriticalControlPoint) LimitFor(parameter string) (CriticalLimit, bool) {
	want := normalizeParameter(parameter)
	if want == "" {
		return CriticalLimit{}, false
	}
	for _, l := range c.CriticalLimits {
		if normalizeParameter(l.Parameter) == want {
			return l, true
		}
	}
	return CriticalLimit{}, false
}

func normalizeParameter(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// formatValue prints whole numbers without a decimal part so descriptions
// read "3 hours" rather than "3.000000 hours".
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// FormatReading renders a reading as "<parameter> (<value> <units>)".
func FormatReading(r MonitoringReading) string {
	units := strings.TrimSpace(r.Units)
	if units == "" {
		return fmt.Sprintf("%s (%s)", r.Parameter, formatValue(r.Value))
	}
	return fmt.Sprintf("%s (%s %s)", r.Parameter, formatValue(r.Value), units)
}

// Float returns a pointer to v; handy for building limits in literals.
func Float(v float64) *float64 { return &v }
