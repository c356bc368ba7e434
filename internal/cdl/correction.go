package cdl

import "strings"

// Descriptions groups the free text fields shared by corrections, collections
// and decision lists.
type Descriptions struct {
	Desc        []string
	InputDesc   string
	ViewingDesc string
}

// AppendDesc adds one description line. Blank lines are ignored.
func (d *Descriptions) AppendDesc(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	d.Desc = append(d.Desc, line)
}

// SetInputDesc replaces the input description unless text is blank, so the
// last non-empty occurrence in a document wins.
func (d *Descriptions) SetInputDesc(text string) {
	if text = strings.TrimSpace(text); text != "" {
		d.InputDesc = text
	}
}

// SetViewingDesc follows the same rule as SetInputDesc.
func (d *Descriptions) SetViewingDesc(text string) {
	if text = strings.TrimSpace(text); text != "" {
		d.ViewingDesc = text
	}
}

// ColorCorrection is a named color grade. Create one with
// Registry.NewCorrection so its id is checked against everything else parsed
// in the same session.
type ColorCorrection struct {
	Descriptions

	id      string
	SOP     *SOP
	SAT     *SAT
	FileIn  string
	FileOut string
}

// ID returns the correction's registered identifier.
func (cc *ColorCorrection) ID() string {
	return cc.id
}

func (cc *ColorCorrection) SetSOP(sop *SOP) {
	cc.SOP = sop
}

func (cc *ColorCorrection) SetSAT(sat *SAT) {
	cc.SAT = sat
}
