package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/fileutil"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/textutil"
)

// output is one file a conversion will write.
type output struct {
	path   string
	format cdl.Format
	write  func(path string) error
}

// plan lists the outputs for a parsed input. .cc writes one file per
// correction the input defines, named after its id; corrections a decision
// list only references are written by the file that defines them. .ccc and
// .cdl write one file named after the input.
func (c *Converter) plan(parsed *formats.Result, corrections []*cdl.ColorCorrection) []output {
	stem := inputStem(parsed.Path)
	writeOpts := []formats.WriteOption{formats.WithPrecision(c.opts.Precision)}

	var outputs []output
	for _, format := range c.opts.Formats {
		switch format {
		case cdl.FormatCC:
			for i, cc := range ownedBy(corrections, parsed.Path) {
				name := textutil.FileNameOr(cc.ID(), fmt.Sprintf("%s_%03d", stem, i+1))
				outputs = append(outputs, output{
					path:   filepath.Join(c.opts.OutputDir, name+format.Extension()),
					format: format,
					write:  func(path string) error { return formats.WriteCC(cc, path, writeOpts...) },
				})
			}
		case cdl.FormatCCC:
			collection := collectionFor(parsed, corrections)
			outputs = append(outputs, output{
				path:   filepath.Join(c.opts.OutputDir, stem+format.Extension()),
				format: format,
				write:  func(path string) error { return formats.WriteCCC(collection, path, writeOpts...) },
			})
		case cdl.FormatCDL:
			list := decisionListFor(parsed, corrections)
			outputs = append(outputs, output{
				path:   filepath.Join(c.opts.OutputDir, stem+format.Extension()),
				format: format,
				write:  func(path string) error { return formats.WriteCDL(list, path, writeOpts...) },
			})
		}
	}
	return outputs
}

// claim reserves the output paths for input, refusing paths already claimed
// in this run and, unless overwriting, paths that exist on disk.
func (c *Converter) claim(claimed map[string]string, input string, outputs []output) error {
	local := make(map[string]struct{}, len(outputs))
	for _, out := range outputs {
		if owner, ok := claimed[out.path]; ok {
			return fmt.Errorf("%w: %s is already written for %s", ErrOutputCollision, out.path, owner)
		}
		if _, ok := local[out.path]; ok {
			return fmt.Errorf("%w: %s is written twice for this input", ErrOutputCollision, out.path)
		}
		local[out.path] = struct{}{}
		if !c.opts.Overwrite && fileutil.Exists(out.path) {
			return fmt.Errorf("%w: %s", ErrOutputExists, out.path)
		}
	}
	for _, out := range outputs {
		claimed[out.path] = input
	}
	return nil
}

func collectionFor(parsed *formats.Result, corrections []*cdl.ColorCorrection) *cdl.Collection {
	if parsed.Collection != nil {
		return parsed.Collection
	}
	return &cdl.Collection{
		Descriptions: parsed.Descriptions(),
		Corrections:  corrections,
		FileIn:       parsed.Path,
	}
}

func decisionListFor(parsed *formats.Result, corrections []*cdl.ColorCorrection) *cdl.DecisionList {
	if parsed.DecisionList != nil {
		return parsed.DecisionList
	}
	list := &cdl.DecisionList{
		Descriptions: parsed.Descriptions(),
		FileIn:       parsed.Path,
	}
	for _, cc := range corrections {
		list.Decisions = append(list.Decisions, cdl.NewDecision(cc))
	}
	return list
}

// uniqueCorrections drops repeats, which happen when a decision list
// references a correction it also carries inline.
func uniqueCorrections(ccs []*cdl.ColorCorrection) []*cdl.ColorCorrection {
	seen := make(map[*cdl.ColorCorrection]struct{}, len(ccs))
	out := make([]*cdl.ColorCorrection, 0, len(ccs))
	for _, cc := range ccs {
		if _, ok := seen[cc]; ok {
			continue
		}
		seen[cc] = struct{}{}
		out = append(out, cc)
	}
	return out
}

// ownedBy keeps the corrections created while parsing input.
func ownedBy(ccs []*cdl.ColorCorrection, input string) []*cdl.ColorCorrection {
	var out []*cdl.ColorCorrection
	for _, cc := range ccs {
		if cc.FileIn == input {
			out = append(out, cc)
		}
	}
	return out
}

func inputStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return textutil.FileNameOr(stem, "cdl")
}
