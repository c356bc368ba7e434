package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFixture writes contents to dir/name, creating dir, and returns the path.
func WriteFixture(t testing.TB, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the contents of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// CorrectionXML returns a minimal <ColorCorrection> element with the given id
// and saturation.
func CorrectionXML(id, saturation string) string {
	return `<ColorCorrection id="` + id + `"><SOPNode><Slope>1 1 1</Slope><Offset>0 0 0</Offset><Power>1 1 1</Power></SOPNode><SATNode><Saturation>` + saturation + `</Saturation></SATNode></ColorCorrection>`
}

// CollectionXML wraps correction elements in a collection document.
func CollectionXML(corrections ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<ColorCorrectionCollection xmlns="urn:ASC:CDL:v1.01">`
	for _, cc := range corrections {
		doc += cc
	}
	return doc + "</ColorCorrectionCollection>\n"
}
