package cdl

// Collection is a Color Correction Collection (.ccc) document.
type Collection struct {
	Descriptions

	Corrections []*ColorCorrection
	FileIn      string
	FileOut     string
}

// IDs lists correction ids in document order.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.Corrections))
	for _, cc := range c.Corrections {
		ids = append(ids, cc.ID())
	}
	return ids
}

// DecisionList is a Color Decision List (.cdl) document.
type DecisionList struct {
	Descriptions

	Decisions []*ColorDecision
	FileIn    string
	FileOut   string
}

// Corrections returns the inline or resolved correction of every decision, in
// order. Decisions whose reference does not resolve are skipped.
func (l *DecisionList) Corrections() []*ColorCorrection {
	out := make([]*ColorCorrection, 0, len(l.Decisions))
	for _, decision := range l.Decisions {
		if cc := decision.Correction(); cc != nil {
			out = append(out, cc)
		}
	}
	return out
}
