package formats

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/fileutil"
)

// WriteOption adjusts serializer output.
type WriteOption func(*writeConfig)

type writeConfig struct {
	precision int
	indent    string
}

// WithPrecision renders every number with a fixed count of decimals. Negative
// values restore the default shortest round-trippable text.
func WithPrecision(decimals int) WriteOption {
	return func(c *writeConfig) {
		c.precision = decimals
	}
}

func newWriteConfig(opts []WriteOption) writeConfig {
	cfg := writeConfig{precision: -1, indent: "    "}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

type xmlSOP struct {
	Slope  string `xml:"Slope"`
	Offset string `xml:"Offset"`
	Power  string `xml:"Power"`
}

type xmlSAT struct {
	Saturation string `xml:"Saturation"`
}

type xmlCorrection struct {
	XMLName     xml.Name `xml:"ColorCorrection"`
	Xmlns       string   `xml:"xmlns,attr,omitempty"`
	ID          string   `xml:"id,attr"`
	Desc        []string `xml:"Description"`
	InputDesc   string   `xml:"InputDescription,omitempty"`
	ViewingDesc string   `xml:"ViewingDescription,omitempty"`
	SOP         *xmlSOP  `xml:"SOPNode,omitempty"`
	SAT         *xmlSAT  `xml:"SATNode,omitempty"`
}

type xmlCollection struct {
	XMLName     xml.Name        `xml:"ColorCorrectionCollection"`
	Xmlns       string          `xml:"xmlns,attr"`
	Desc        []string        `xml:"Description"`
	InputDesc   string          `xml:"InputDescription,omitempty"`
	ViewingDesc string          `xml:"ViewingDescription,omitempty"`
	Corrections []xmlCorrection `xml:"ColorCorrection"`
}

type xmlRef struct {
	Ref string `xml:"ref,attr"`
}

type xmlDecision struct {
	Desc          []string       `xml:"Description"`
	MediaRef      *xmlRef        `xml:"MediaRef,omitempty"`
	Correction    *xmlCorrection `xml:"ColorCorrection,omitempty"`
	CorrectionRef *xmlRef        `xml:"ColorCorrectionRef,omitempty"`
}

type xmlDecisionList struct {
	XMLName     xml.Name      `xml:"ColorDecisionList"`
	Xmlns       string        `xml:"xmlns,attr"`
	Desc        []string      `xml:"Description"`
	InputDesc   string        `xml:"InputDescription,omitempty"`
	ViewingDesc string        `xml:"ViewingDescription,omitempty"`
	Decisions   []xmlDecision `xml:"ColorDecision"`
}

func toXMLCorrection(cc *cdl.ColorCorrection, cfg writeConfig) xmlCorrection {
	out := xmlCorrection{
		ID:          cc.ID(),
		Desc:        cc.Desc,
		InputDesc:   cc.InputDesc,
		ViewingDesc: cc.ViewingDesc,
	}
	if cc.SOP != nil {
		out.SOP = &xmlSOP{
			Slope:  cc.SOP.SlopeText(cfg.precision),
			Offset: cc.SOP.OffsetText(cfg.precision),
			Power:  cc.SOP.PowerText(cfg.precision),
		}
	}
	if cc.SAT != nil {
		out.SAT = &xmlSAT{Saturation: cc.SAT.SaturationText(cfg.precision)}
	}
	return out
}

// EncodeCC writes cc as a standalone .cc document.
func EncodeCC(w io.Writer, cc *cdl.ColorCorrection, opts ...WriteOption) error {
	cfg := newWriteConfig(opts)
	doc := toXMLCorrection(cc, cfg)
	doc.Xmlns = ascCDLNamespace
	return encodeXML(w, doc, cfg)
}

// EncodeCCC writes a collection document.
func EncodeCCC(w io.Writer, ccc *cdl.Collection, opts ...WriteOption) error {
	cfg := newWriteConfig(opts)
	doc := xmlCollection{
		Xmlns:       ascCDLNamespace,
		Desc:        ccc.Desc,
		InputDesc:   ccc.InputDesc,
		ViewingDesc: ccc.ViewingDesc,
	}
	for _, cc := range ccc.Corrections {
		doc.Corrections = append(doc.Corrections, toXMLCorrection(cc, cfg))
	}
	return encodeXML(w, doc, cfg)
}

// EncodeCDL writes a decision list document. Decisions that reference their
// correction are written as <ColorCorrectionRef>.
func EncodeCDL(w io.Writer, list *cdl.DecisionList, opts ...WriteOption) error {
	cfg := newWriteConfig(opts)
	doc := xmlDecisionList{
		Xmlns:       ascCDLNamespace,
		Desc:        list.Desc,
		InputDesc:   list.InputDesc,
		ViewingDesc: list.ViewingDesc,
	}
	for _, decision := range list.Decisions {
		out := xmlDecision{Desc: decision.Desc}
		if decision.MediaRef != "" {
			out.MediaRef = &xmlRef{Ref: decision.MediaRef}
		}
		switch {
		case decision.IsRef():
			out.CorrectionRef = &xmlRef{Ref: decision.Ref().Ref}
		case decision.Correction() != nil:
			cc := toXMLCorrection(decision.Correction(), cfg)
			out.Correction = &cc
		default:
			return fmt.Errorf("encode cdl: %v has no color correction", decision)
		}
		doc.Decisions = append(doc.Decisions, out)
	}
	return encodeXML(w, doc, cfg)
}

func encodeXML(w io.Writer, doc any, cfg writeConfig) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", cfg.indent)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteCC writes cc to path and records the path as its FileOut.
func WriteCC(cc *cdl.ColorCorrection, path string, opts ...WriteOption) error {
	if err := writeFile(path, func(w io.Writer) error { return EncodeCC(w, cc, opts...) }); err != nil {
		return err
	}
	cc.FileOut = path
	return nil
}

// WriteCCC writes ccc to path.
func WriteCCC(ccc *cdl.Collection, path string, opts ...WriteOption) error {
	if err := writeFile(path, func(w io.Writer) error { return EncodeCCC(w, ccc, opts...) }); err != nil {
		return err
	}
	ccc.FileOut = path
	return nil
}

// WriteCDL writes list to path.
func WriteCDL(list *cdl.DecisionList, path string, opts ...WriteOption) error {
	if err := writeFile(path, func(w io.Writer) error { return EncodeCDL(w, list, opts...) }); err != nil {
		return err
	}
	list.FileOut = path
	return nil
}

func writeFile(path string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return cdl.Wrap(cdl.ErrIO, path, "write", err)
	}
	return nil
}
