package formats_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/formats"
)

func TestParseCDL(t *testing.T) {
	reg := cdl.NewRegistry()
	list, err := formats.ParseCDL(reg, filepath.Join("testdata", "reel1.cdl"))
	if err != nil {
		t.Fatalf("ParseCDL returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"Reel 1 dailies"}, list.Desc); diff != "" {
		t.Fatalf("list desc mismatch (-want +got):\n%s", diff)
	}
	if list.InputDesc != "LogC AWG" || list.ViewingDesc != "Rec709 monitor" {
		t.Fatalf("unexpected input/viewing desc: %q / %q", list.InputDesc, list.ViewingDesc)
	}
	if len(list.Decisions) != 4 {
		t.Fatalf("expected 4 decisions, got %d", len(list.Decisions))
	}

	first := list.Decisions[0]
	if first.IsRef() || first.MediaRef != "A001C001.mov" {
		t.Fatalf("unexpected first decision: %v media=%q", first, first.MediaRef)
	}
	sh010 := first.Correction()
	if sh010 == nil || sh010.ID() != "sh010" || sh010.SAT.Saturation != 0.9 {
		t.Fatalf("unexpected inline correction: %#v", sh010)
	}
	if diff := cmp.Diff([]string{"day exterior"}, sh010.Desc); diff != "" {
		t.Fatalf("correction desc mismatch (-want +got):\n%s", diff)
	}

	second := list.Decisions[1]
	if !second.IsRef() || second.Correction() != sh010 {
		t.Fatalf("expected second decision to reference sh010, got %v", second)
	}
	if diff := cmp.Diff([]string{"pickup uses the sh010 grade"}, second.Desc); diff != "" {
		t.Fatalf("decision desc mismatch (-want +got):\n%s", diff)
	}

	forward := list.Decisions[2]
	if forward.Correction() == nil || forward.Correction().ID() != "sh030" {
		t.Fatalf("expected forward reference to resolve to sh030, got %v", forward.Correction())
	}

	ids := make([]string, 0)
	for _, cc := range list.Corrections() {
		ids = append(ids, cc.ID())
	}
	if diff := cmp.Diff([]string{"sh010", "sh010", "sh030", "sh030"}, ids); diff != "" {
		t.Fatalf("corrections mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCDLUnresolvedRefIsKept(t *testing.T) {
	doc := `<ColorDecisionList><ColorDecision><ColorCorrectionRef ref="elsewhere"/></ColorDecision></ColorDecisionList>`
	reg := cdl.NewRegistry()
	list, err := formats.DecodeCDL(reg, strings.NewReader(doc), "refs.cdl")
	if err != nil {
		t.Fatalf("DecodeCDL returned error: %v", err)
	}
	decision := list.Decisions[0]
	if decision.Correction() != nil {
		t.Fatal("expected unresolved reference")
	}
	if decision.Ref().Ref != "elsewhere" {
		t.Fatalf("unexpected ref: %q", decision.Ref().Ref)
	}

	late, _ := reg.NewCorrection("elsewhere")
	if got, err := decision.Resolve(reg); err != nil || got != late {
		t.Fatalf("expected late resolution to succeed, got %v, %v", got, err)
	}
}

func TestParseCDLErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"empty decision", `<ColorDecisionList><ColorDecision/></ColorDecisionList>`},
		{"two corrections", `<ColorDecisionList><ColorDecision><ColorCorrection id="a"/><ColorCorrectionRef ref="a"/></ColorDecision></ColorDecisionList>`},
		{"ref without target", `<ColorDecisionList><ColorDecision><ColorCorrectionRef/></ColorDecision></ColorDecisionList>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := cdl.NewRegistry()
			_, err := formats.DecodeCDL(reg, strings.NewReader(tc.doc), "bad.cdl")
			if !errors.Is(err, cdl.ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if reg.Len() != 0 {
				t.Fatalf("failed parse left corrections registered: %v", reg.IDs())
			}
		})
	}
}

func TestCDLRoundTrip(t *testing.T) {
	list, err := formats.ParseCDL(cdl.NewRegistry(), filepath.Join("testdata", "reel1.cdl"))
	if err != nil {
		t.Fatalf("ParseCDL returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := formats.EncodeCDL(&buf, list); err != nil {
		t.Fatalf("EncodeCDL returned error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "SatNode") {
		t.Fatal("expected canonical SATNode spelling")
	}
	if got := strings.Count(out, "<ColorCorrectionRef"); got != 2 {
		t.Fatalf("expected references to stay references, got %d", got)
	}

	reparsed, err := formats.DecodeCDL(cdl.NewRegistry(), &buf, "roundtrip.cdl")
	if err != nil {
		t.Fatalf("DecodeCDL of written output failed: %v", err)
	}
	if diff := cmp.Diff(list.Descriptions, reparsed.Descriptions); diff != "" {
		t.Fatalf("list descriptions changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(summarize(list.Corrections()), summarize(reparsed.Corrections()), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("corrections changed (-want +got):\n%s", diff)
	}
	if reparsed.Decisions[0].MediaRef != "A001C001.mov" {
		t.Fatalf("media ref lost: %q", reparsed.Decisions[0].MediaRef)
	}
}

func TestParseCC(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<ColorCorrection id="single">
    <Description>one</Description>
    <ASC_SOP>
        <Description>dropped</Description>
        <Slope>1.1 1.2 1.3</Slope>
    </ASC_SOP>
    <Description>two</Description>
</ColorCorrection>`

	reg := cdl.NewRegistry()
	cc, err := formats.DecodeCC(reg, strings.NewReader(doc), "single.cc")
	if err != nil {
		t.Fatalf("DecodeCC returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"one", "two"}, cc.Desc); diff != "" {
		t.Fatalf("desc mismatch (-want +got):\n%s", diff)
	}
	assertTriplet(t, "slope", cc.SOP.Slope, cdl.Triplet{1.1, 1.2, 1.3})
	if cc.SAT != nil {
		t.Fatal("expected nil SAT")
	}
	if cc.FileIn != "single.cc" {
		t.Fatalf("unexpected file in: %q", cc.FileIn)
	}

	if _, err := formats.DecodeCC(reg, strings.NewReader(doc), "again.cc"); !errors.Is(err, cdl.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID on second parse, got %v", err)
	}
}

func TestParseCCNonUTF8Prolog(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<ColorCorrection id=\"caf\xe9\"><Description>r\xe9glage</Description></ColorCorrection>")
	cc, err := formats.DecodeCC(cdl.NewRegistry(), bytes.NewReader(doc), "latin1.cc")
	if err != nil {
		t.Fatalf("DecodeCC returned error: %v", err)
	}
	if cc.ID() != "café" {
		t.Fatalf("unexpected id: %q", cc.ID())
	}
	if cc.Desc[0] != "réglage" {
		t.Fatalf("unexpected desc: %q", cc.Desc[0])
	}
}
