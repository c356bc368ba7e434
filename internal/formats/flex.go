package formats

import (
	"fmt"
	"io"
	"strings"

	"cdlconvert/internal/cdl"
)

// FLEx record codes understood by the parser. Other codes are ignored.
const (
	flexTitle  = "010"
	flexRecord = "100"
	flexSlate  = "110"
	flexSOP    = "701"
	flexSAT    = "702"
)

// ParseFlex reads a DaVinci FLEx telecine list and returns one correction per
// record carrying an ASC_SOP (701) or ASC_SAT (702) line.
func ParseFlex(reg *cdl.Registry, path string, opts TextOptions) ([]*cdl.ColorCorrection, error) {
	var ccs []*cdl.ColorCorrection
	err := withFile(path, func(r io.Reader) error {
		var err error
		ccs, err = DecodeFlex(reg, r, path, opts)
		return err
	})
	return ccs, err
}

// DecodeFlex parses FLEx text from r.
func DecodeFlex(reg *cdl.Registry, r io.Reader, name string, opts TextOptions) ([]*cdl.ColorCorrection, error) {
	lines, err := readLines(r, opts.Encoding)
	if err != nil {
		return nil, cdl.Wrap(cdl.ErrIO, name, "read", err)
	}
	s := newSession(reg, name)
	ccs, err := s.flex(lines, fileStem(name))
	if err != nil {
		s.rollback()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ccs, nil
}

type flexRecordState struct {
	slate []string
	sop   *cdl.SOP
	sat   *cdl.SAT
}

func (s *session) flex(lines []string, stem string) ([]*cdl.ColorCorrection, error) {
	var (
		title   string
		current *flexRecordState
		records int
		ccs     []*cdl.ColorCorrection
	)

	flush := func() error {
		if current == nil || (current.sop == nil && current.sat == nil) {
			current = nil
			return nil
		}
		records++
		id := strings.Join(current.slate, "_")
		if id == "" {
			base := title
			if base == "" {
				base = stem
			}
			id = fmt.Sprintf("%s_%03d", base, records)
		}
		cc, err := s.newCorrection(id)
		if err != nil {
			return err
		}
		cc.SetSOP(current.sop)
		cc.SetSAT(current.sat)
		ccs = append(ccs, cc)
		current = nil
		return nil
	}

	for lineNo, line := range lines {
		if len(line) < 3 {
			continue
		}
		code := line[:3]
		rest := strings.TrimSpace(line[3:])
		if code == flexTitle {
			title = rest
			continue
		}
		if code == flexRecord {
			if err := flush(); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			current = &flexRecordState{}
			continue
		}
		if current == nil {
			continue
		}
		switch code {
		case flexSlate:
			current.slate = strings.Fields(rest)
		case flexSOP:
			sop, err := parseSOPGroups("ASC_SOP", strings.TrimPrefix(rest, "ASC_SOP"))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			current.sop = sop
		case flexSAT:
			value, err := cdl.ParseScalar("ASC_SAT", strings.TrimPrefix(rest, "ASC_SAT"))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			current.sat = &cdl.SAT{Saturation: value}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return ccs, nil
}
