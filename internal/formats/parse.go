package formats

import (
	"fmt"

	"cdlconvert/internal/cdl"
)

// Result is the outcome of parsing one file of any supported format.
type Result struct {
	Format cdl.Format
	Path   string
	// Collection is set for .ccc inputs.
	Collection *cdl.Collection
	// DecisionList is set for .cdl inputs.
	DecisionList *cdl.DecisionList
	// Corrections holds every correction found, in document order.
	Corrections []*cdl.ColorCorrection
}

// Descriptions returns the document level descriptions, if the format has any.
func (r *Result) Descriptions() cdl.Descriptions {
	switch {
	case r.Collection != nil:
		return r.Collection.Descriptions
	case r.DecisionList != nil:
		return r.DecisionList.Descriptions
	}
	return cdl.Descriptions{}
}

// Parse picks a parser from the file extension.
func Parse(reg *cdl.Registry, path string, opts TextOptions) (*Result, error) {
	format, ok := cdl.FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unsupported file extension", cdl.ErrParse, path)
	}
	return ParseAs(reg, path, format, opts)
}

// ParseAs parses path as the given format regardless of its extension.
func ParseAs(reg *cdl.Registry, path string, format cdl.Format, opts TextOptions) (*Result, error) {
	result := &Result{Format: format, Path: path}
	switch format {
	case cdl.FormatCC:
		cc, err := ParseCC(reg, path)
		if err != nil {
			return nil, err
		}
		result.Corrections = []*cdl.ColorCorrection{cc}
	case cdl.FormatCCC:
		ccc, err := ParseCCC(reg, path)
		if err != nil {
			return nil, err
		}
		result.Collection = ccc
		result.Corrections = ccc.Corrections
	case cdl.FormatCDL:
		list, err := ParseCDL(reg, path)
		if err != nil {
			return nil, err
		}
		result.DecisionList = list
		result.Corrections = list.Corrections()
	case cdl.FormatALE:
		ccs, err := ParseALE(reg, path, opts)
		if err != nil {
			return nil, err
		}
		result.Corrections = ccs
	case cdl.FormatFlex:
		ccs, err := ParseFlex(reg, path, opts)
		if err != nil {
			return nil, err
		}
		result.Corrections = ccs
	default:
		return nil, fmt.Errorf("%w: %s: unsupported format %q", cdl.ErrParse, path, format)
	}
	return result, nil
}
