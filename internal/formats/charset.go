package formats

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// charsetReader lets encoding/xml read documents whose prolog declares a
// non UTF-8 encoding, e.g. ISO-8859-1 files written by older grading suites.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	return decodeCharset(label, input)
}

// decodeCharset wraps input so it yields UTF-8. An empty label or any UTF-8
// spelling returns input unchanged.
func decodeCharset(label string, input io.Reader) (io.Reader, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	switch normalized {
	case "", "utf-8", "utf8":
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(normalized)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
