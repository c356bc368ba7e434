package formats

import (
	"fmt"
	"io"
	"os"

	"cdlconvert/internal/cdl"
)

// ParseCC reads a single correction file, whose root element is the
// <ColorCorrection> itself.
func ParseCC(reg *cdl.Registry, path string) (*cdl.ColorCorrection, error) {
	var cc *cdl.ColorCorrection
	err := withFile(path, func(r io.Reader) error {
		var err error
		cc, err = DecodeCC(reg, r, path)
		return err
	})
	return cc, err
}

// DecodeCC parses a .cc document from r. name is recorded as FileIn and used
// in error messages.
func DecodeCC(reg *cdl.Registry, r io.Reader, name string) (*cdl.ColorCorrection, error) {
	root, err := readRoot(r, name, tagCorrection)
	if err != nil {
		return nil, err
	}
	s := newSession(reg, name)
	cc, err := s.correction(root)
	if err != nil {
		s.rollback()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cc, nil
}

// ParseCCC reads a Color Correction Collection file.
func ParseCCC(reg *cdl.Registry, path string) (*cdl.Collection, error) {
	var ccc *cdl.Collection
	err := withFile(path, func(r io.Reader) error {
		var err error
		ccc, err = DecodeCCC(reg, r, path)
		return err
	})
	return ccc, err
}

// DecodeCCC parses a .ccc document from r.
func DecodeCCC(reg *cdl.Registry, r io.Reader, name string) (*cdl.Collection, error) {
	root, err := readRoot(r, name, tagCollection)
	if err != nil {
		return nil, err
	}
	s := newSession(reg, name)
	ccc, err := s.collection(root)
	if err != nil {
		s.rollback()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ccc, nil
}

func (s *session) collection(root *element) (*cdl.Collection, error) {
	ccc := &cdl.Collection{FileIn: s.fileIn}
	for _, child := range root.children {
		if describe(child, &ccc.Descriptions) {
			continue
		}
		if child.name != tagCorrection {
			continue
		}
		cc, err := s.correction(child)
		if err != nil {
			return nil, err
		}
		ccc.Corrections = append(ccc.Corrections, cc)
	}
	return ccc, nil
}

// ParseCDL reads a Color Decision List file.
func ParseCDL(reg *cdl.Registry, path string) (*cdl.DecisionList, error) {
	var list *cdl.DecisionList
	err := withFile(path, func(r io.Reader) error {
		var err error
		list, err = DecodeCDL(reg, r, path)
		return err
	})
	return list, err
}

// DecodeCDL parses a .cdl document from r. ColorCorrectionRef entries are
// resolved once the whole document has been read, so a reference may point at
// a correction defined later in the file. References that still do not
// resolve are kept; callers can inspect them through ColorDecision.Ref.
func DecodeCDL(reg *cdl.Registry, r io.Reader, name string) (*cdl.DecisionList, error) {
	root, err := readRoot(r, name, tagDecisionList)
	if err != nil {
		return nil, err
	}
	s := newSession(reg, name)
	list, err := s.decisionList(root)
	if err != nil {
		s.rollback()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for _, decision := range list.Decisions {
		if decision.IsRef() {
			_, _ = decision.Resolve(reg)
		}
	}
	return list, nil
}

func (s *session) decisionList(root *element) (*cdl.DecisionList, error) {
	list := &cdl.DecisionList{FileIn: s.fileIn}
	for _, child := range root.children {
		if describe(child, &list.Descriptions) {
			continue
		}
		if child.name != tagDecision {
			continue
		}
		decision, err := s.decision(child)
		if err != nil {
			return nil, err
		}
		list.Decisions = append(list.Decisions, decision)
	}
	return list, nil
}

func (s *session) decision(el *element) (*cdl.ColorDecision, error) {
	var (
		decision *cdl.ColorDecision
		desc     cdl.Descriptions
		mediaRef string
	)
	for _, child := range el.children {
		if describe(child, &desc) {
			continue
		}
		switch child.name {
		case tagMediaRef:
			mediaRef, _ = child.attr(referenceAttr)
		case tagCorrection, tagCorrectionRef:
			if decision != nil {
				return nil, cdl.Parsef("<%s> holds more than one color correction", tagDecision)
			}
			if child.name == tagCorrectionRef {
				ref, _ := child.attr(referenceAttr)
				if ref == "" {
					return nil, cdl.Parsef("<%s> is missing its %q attribute", tagCorrectionRef, referenceAttr)
				}
				decision = cdl.NewDecisionRef(ref)
				continue
			}
			cc, err := s.correction(child)
			if err != nil {
				return nil, err
			}
			decision = cdl.NewDecision(cc)
		}
	}
	if decision == nil {
		return nil, cdl.Parsef("<%s> has no <%s> or <%s>", tagDecision, tagCorrection, tagCorrectionRef)
	}
	decision.Descriptions = desc
	decision.MediaRef = mediaRef
	return decision, nil
}

func readRoot(r io.Reader, name, want string) (*element, error) {
	root, err := readTree(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if root.name != want {
		return nil, fmt.Errorf("%s: %w", name, cdl.Parsef("root element is <%s>, expected <%s>", root.name, want))
	}
	return root, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return cdl.Wrap(cdl.ErrIO, path, "open", err)
	}
	defer file.Close()
	return fn(file)
}
