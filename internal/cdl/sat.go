package cdl

// SAT is the saturation portion of a color correction. Values above 1 are
// super-saturation and are kept as parsed.
type SAT struct {
	Saturation float64
}

// NewSAT returns an identity saturation of 1.
func NewSAT() *SAT {
	return &SAT{Saturation: 1}
}

// SetSaturation parses the <Saturation> element body.
func (s *SAT) SetSaturation(text string) error {
	value, err := ParseScalar("Saturation", text)
	if err != nil {
		return err
	}
	s.Saturation = value
	return nil
}

// SaturationText is the element body for <Saturation>.
func (s *SAT) SaturationText(precision int) string {
	return FormatValue(s.Saturation, precision)
}

func (s *SAT) Equal(other *SAT) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Saturation == other.Saturation
}
