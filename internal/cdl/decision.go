package cdl

import "fmt"

// ColorCorrectionRef points at a correction by id instead of carrying it
// inline. It is resolved against the registry it was parsed with.
type ColorCorrectionRef struct {
	Ref      string
	resolved *ColorCorrection
}

// Resolve looks the reference up in reg. Once resolved, the result sticks.
func (r *ColorCorrectionRef) Resolve(reg *Registry) (*ColorCorrection, error) {
	if r.resolved != nil {
		return r.resolved, nil
	}
	cc, ok := reg.Lookup(r.Ref)
	if !ok {
		return nil, Parsef("color correction reference %q is not defined", r.Ref)
	}
	r.resolved = cc
	return cc, nil
}

// Resolved returns the target if Resolve has succeeded.
func (r *ColorCorrectionRef) Resolved() *ColorCorrection {
	return r.resolved
}

// ColorDecision pairs one correction (inline or by reference) with the media
// it applies to.
type ColorDecision struct {
	Descriptions

	MediaRef string
	inline   *ColorCorrection
	ref      *ColorCorrectionRef
}

// NewDecision wraps an inline correction.
func NewDecision(cc *ColorCorrection) *ColorDecision {
	return &ColorDecision{inline: cc}
}

// NewDecisionRef wraps a correction reference.
func NewDecisionRef(ref string) *ColorDecision {
	return &ColorDecision{ref: &ColorCorrectionRef{Ref: ref}}
}

// IsRef reports whether the decision refers to its correction by id.
func (d *ColorDecision) IsRef() bool {
	return d.ref != nil
}

// Ref returns the reference, or nil for inline decisions.
func (d *ColorDecision) Ref() *ColorCorrectionRef {
	return d.ref
}

// Correction returns the inline correction or the resolved reference target.
func (d *ColorDecision) Correction() *ColorCorrection {
	if d.ref != nil {
		return d.ref.Resolved()
	}
	return d.inline
}

// Resolve makes sure the decision's correction is available.
func (d *ColorDecision) Resolve(reg *Registry) (*ColorCorrection, error) {
	if d.ref == nil {
		if d.inline == nil {
			return nil, Parsef("color decision has no color correction")
		}
		return d.inline, nil
	}
	return d.ref.Resolve(reg)
}

// CorrectionID is the id of the inline correction or the referenced one.
func (d *ColorDecision) CorrectionID() string {
	if d.ref != nil {
		return d.ref.Ref
	}
	if d.inline != nil {
		return d.inline.ID()
	}
	return ""
}

func (d *ColorDecision) String() string {
	kind := "inline"
	if d.ref != nil {
		kind = "ref"
	}
	return fmt.Sprintf("ColorDecision(%s %s)", kind, d.CorrectionID())
}
