package formats

import (
	"fmt"
	"io"
	"strings"

	"cdlconvert/internal/cdl"
)

const (
	aleSOPColumn = "ASC_SOP"
	aleSATColumn = "ASC_SAT"
)

// aleIDColumns are tried in order to name a correction.
var aleIDColumns = []string{"Name", "Tape", "Source File"}

// ParseALE reads an Avid Log Exchange file and returns one correction per
// data row that carries an ASC_SOP or ASC_SAT value.
func ParseALE(reg *cdl.Registry, path string, opts TextOptions) ([]*cdl.ColorCorrection, error) {
	var ccs []*cdl.ColorCorrection
	err := withFile(path, func(r io.Reader) error {
		var err error
		ccs, err = DecodeALE(reg, r, path, opts)
		return err
	})
	return ccs, err
}

// DecodeALE parses ALE text from r.
func DecodeALE(reg *cdl.Registry, r io.Reader, name string, opts TextOptions) ([]*cdl.ColorCorrection, error) {
	lines, err := readLines(r, opts.Encoding)
	if err != nil {
		return nil, cdl.Wrap(cdl.ErrIO, name, "read", err)
	}
	s := newSession(reg, name)
	ccs, err := s.ale(lines, fileStem(name))
	if err != nil {
		s.rollback()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ccs, nil
}

func (s *session) ale(lines []string, stem string) ([]*cdl.ColorCorrection, error) {
	var (
		section string
		columns []string
		ccs     []*cdl.ColorCorrection
		row     int
	)
	for lineNo, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case "Heading", "Column", "Data":
			section = trimmed
			continue
		case "":
			continue
		}

		switch section {
		case "Column":
			if columns == nil {
				columns = splitALE(line)
			}
		case "Data":
			if columns == nil {
				return nil, cdl.Parsef("line %d: data row before column names", lineNo+1)
			}
			row++
			record := make(map[string]string, len(columns))
			for i, value := range splitALE(line) {
				if i < len(columns) {
					record[columns[i]] = value
				}
			}
			cc, err := s.aleRecord(record, stem, row)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			if cc != nil {
				ccs = append(ccs, cc)
			}
		}
	}
	return ccs, nil
}

func (s *session) aleRecord(record map[string]string, stem string, row int) (*cdl.ColorCorrection, error) {
	sopText := record[aleSOPColumn]
	satText := record[aleSATColumn]
	if sopText == "" && satText == "" {
		return nil, nil
	}

	var sop *cdl.SOP
	var sat *cdl.SAT
	var err error
	if sopText != "" {
		if sop, err = parseSOPGroups(aleSOPColumn, sopText); err != nil {
			return nil, err
		}
	}
	if satText != "" {
		value, err := cdl.ParseScalar(aleSATColumn, satText)
		if err != nil {
			return nil, err
		}
		sat = &cdl.SAT{Saturation: value}
	}

	id := ""
	for _, column := range aleIDColumns {
		if value := record[column]; value != "" {
			id = value
			break
		}
	}
	if id == "" {
		id = fmt.Sprintf("%s_%03d", stem, row)
	}
	cc, err := s.newCorrection(id)
	if err != nil {
		return nil, err
	}
	cc.SetSOP(sop)
	cc.SetSAT(sat)
	return cc, nil
}

func splitALE(line string) []string {
	fields := strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
