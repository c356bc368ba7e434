package cdl

import "fmt"

var channelNames = [3]string{"red", "green", "blue"}

// SanityWarnings lists values that parse fine but are unusual for a grade:
// negative slope, power or saturation. They are reported, never rejected.
func (cc *ColorCorrection) SanityWarnings() []string {
	var warnings []string
	if cc.SOP != nil {
		for i, value := range cc.SOP.Slope {
			if value < 0 {
				warnings = append(warnings, fmt.Sprintf("%s: negative %s slope %s", cc.id, channelNames[i], FormatValue(value, -1)))
			}
		}
		for i, value := range cc.SOP.Power {
			if value < 0 {
				warnings = append(warnings, fmt.Sprintf("%s: negative %s power %s", cc.id, channelNames[i], FormatValue(value, -1)))
			}
		}
	}
	if cc.SAT != nil && cc.SAT.Saturation < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: negative saturation %s", cc.id, FormatValue(cc.SAT.Saturation, -1)))
	}
	return warnings
}
