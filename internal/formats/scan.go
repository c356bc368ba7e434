package formats

import (
	"fmt"
	"strings"

	"cdlconvert/internal/cdl"
)

const (
	tagCollection    = "ColorCorrectionCollection"
	tagDecisionList  = "ColorDecisionList"
	tagDecision      = "ColorDecision"
	tagCorrection    = "ColorCorrection"
	tagCorrectionRef = "ColorCorrectionRef"
	tagMediaRef      = "MediaRef"
	tagDescription   = "Description"
	tagInputDesc     = "InputDescription"
	tagViewingDesc   = "ViewingDescription"
	tagSlope         = "Slope"
	tagOffset        = "Offset"
	tagPower         = "Power"
	tagSaturation    = "Saturation"
	correctionIDAttr = "id"
	referenceAttr    = "ref"
	ascCDLNamespace  = "urn:ASC:CDL:v1.01"
)

// Accepted spellings of the SOP and SAT container elements. Matching is exact;
// no other casing is recognized.
var (
	sopTags = map[string]struct{}{"SOPNode": {}, "SopNode": {}, "ASC_SOP": {}}
	satTags = map[string]struct{}{"SATNode": {}, "SatNode": {}, "ASC_SAT": {}}
)

func isSOPTag(name string) bool {
	_, ok := sopTags[name]
	return ok
}

func isSATTag(name string) bool {
	_, ok := satTags[name]
	return ok
}

// session tracks the corrections one parse has registered so they can be
// released if the parse fails.
type session struct {
	reg     *cdl.Registry
	fileIn  string
	created []*cdl.ColorCorrection
}

func newSession(reg *cdl.Registry, fileIn string) *session {
	return &session{reg: reg, fileIn: fileIn}
}

func (s *session) newCorrection(id string) (*cdl.ColorCorrection, error) {
	cc, err := s.reg.NewCorrection(id)
	if err != nil {
		return nil, err
	}
	cc.FileIn = s.fileIn
	s.created = append(s.created, cc)
	return cc, nil
}

func (s *session) rollback() {
	s.reg.Release(s.created...)
	s.created = nil
}

// describe applies a free text element to target. It reports false when el is
// not one of the three description elements.
func describe(el *element, target *cdl.Descriptions) bool {
	switch el.name {
	case tagDescription:
		target.AppendDesc(el.content())
	case tagInputDesc:
		target.SetInputDesc(el.content())
	case tagViewingDesc:
		target.SetViewingDesc(el.content())
	default:
		return false
	}
	return true
}

// correction parses a <ColorCorrection> element and registers it.
func (s *session) correction(el *element) (*cdl.ColorCorrection, error) {
	id, _ := el.attr(correctionIDAttr)
	if strings.TrimSpace(id) == "" {
		return nil, cdl.Parsef("<%s> is missing its %q attribute", tagCorrection, correctionIDAttr)
	}
	cc, err := s.newCorrection(id)
	if err != nil {
		return nil, err
	}

	for _, child := range el.children {
		if describe(child, &cc.Descriptions) {
			continue
		}
		switch {
		case isSOPTag(child.name):
			if cc.SOP != nil {
				return nil, cdl.Parsef("color correction %q has more than one SOP node", cc.ID())
			}
			sop, err := parseSOPNode(child)
			if err != nil {
				return nil, fmt.Errorf("color correction %q: %w", cc.ID(), err)
			}
			cc.SetSOP(sop)
		case isSATTag(child.name):
			if cc.SAT != nil {
				return nil, cdl.Parsef("color correction %q has more than one SAT node", cc.ID())
			}
			sat, err := parseSATNode(child)
			if err != nil {
				return nil, fmt.Errorf("color correction %q: %w", cc.ID(), err)
			}
			cc.SetSAT(sat)
		}
	}
	return cc, nil
}

// parseSOPNode reads Slope, Offset and Power. Descriptions inside the node are
// not part of the model and are dropped.
func parseSOPNode(el *element) (*cdl.SOP, error) {
	sop := cdl.NewSOP()
	for _, child := range el.children {
		var err error
		switch child.name {
		case tagSlope:
			err = sop.SetSlope(child.content())
		case tagOffset:
			err = sop.SetOffset(child.content())
		case tagPower:
			err = sop.SetPower(child.content())
		}
		if err != nil {
			return nil, err
		}
	}
	return sop, nil
}

func parseSATNode(el *element) (*cdl.SAT, error) {
	sat := cdl.NewSAT()
	for _, child := range el.children {
		if child.name != tagSaturation {
			continue
		}
		if err := sat.SetSaturation(child.content()); err != nil {
			return nil, err
		}
	}
	return sat, nil
}
