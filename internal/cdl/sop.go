package cdl

import (
	"strconv"
	"strings"
)

// Triplet holds one value per color channel, in R, G, B order.
type Triplet [3]float64

// SOP is the slope/offset/power portion of a color correction.
type SOP struct {
	Slope  Triplet
	Offset Triplet
	Power  Triplet
}

// NewSOP returns an identity SOP: slope 1, offset 0, power 1.
func NewSOP() *SOP {
	return &SOP{
		Slope:  Triplet{1, 1, 1},
		Offset: Triplet{0, 0, 0},
		Power:  Triplet{1, 1, 1},
	}
}

// SetSlope parses text as three whitespace separated numbers.
func (s *SOP) SetSlope(text string) error {
	return s.set(&s.Slope, "Slope", text)
}

// SetOffset parses text as three whitespace separated numbers.
func (s *SOP) SetOffset(text string) error {
	return s.set(&s.Offset, "Offset", text)
}

// SetPower parses text as three whitespace separated numbers.
func (s *SOP) SetPower(text string) error {
	return s.set(&s.Power, "Power", text)
}

func (s *SOP) set(dst *Triplet, field, text string) error {
	values, err := ParseTriplet(field, text)
	if err != nil {
		return err
	}
	*dst = values
	return nil
}

// ParseTriplet parses exactly three floats. Anything else is a ValueError
// naming field.
func ParseTriplet(field, text string) (Triplet, error) {
	var out Triplet
	tokens := strings.Fields(text)
	if len(tokens) != 3 {
		return out, &ValueError{Field: field, Text: text}
	}
	for i, token := range tokens {
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return out, &ValueError{Field: field, Text: text, Err: err}
		}
		out[i] = value
	}
	return out, nil
}

// ParseScalar parses a single float, reporting failures against field.
func ParseScalar(field, text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, &ValueError{Field: field, Text: text}
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &ValueError{Field: field, Text: text, Err: err}
	}
	return value, nil
}

// Format renders the triplet as space separated decimals. precision < 0 gives
// the shortest text that parses back to the same values.
func (t Triplet) Format(precision int) string {
	parts := make([]string, len(t))
	for i, value := range t {
		parts[i] = FormatValue(value, precision)
	}
	return strings.Join(parts, " ")
}

// SlopeText, OffsetText and PowerText are the element bodies for <Slope>,
// <Offset> and <Power>.
func (s *SOP) SlopeText(precision int) string { return s.Slope.Format(precision) }
func (s *SOP) OffsetText(precision int) string { return s.Offset.Format(precision) }
func (s *SOP) PowerText(precision int) string { return s.Power.Format(precision) }

// Equal reports whether both SOPs carry identical values. Nil values are only
// equal to each other.
func (s *SOP) Equal(other *SOP) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}

// FormatValue renders one number. Integral values keep a trailing ".0" so the
// output reads like the hand-written files the format came from.
func FormatValue(value float64, precision int) string {
	if precision >= 0 {
		return strconv.FormatFloat(value, 'f', precision, 64)
	}
	text := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.ContainsAny(text, ".aI") {
		text += ".0"
	}
	return text
}
