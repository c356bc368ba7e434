package formats

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"cdlconvert/internal/cdl"
)

// element is one XML element with its attributes, child elements, and the
// character data found directly inside it.
type element struct {
	name     string
	attrs    []xml.Attr
	children []*element
	text     strings.Builder
}

func (e *element) attr(name string) (string, bool) {
	for _, attr := range e.attrs {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (e *element) content() string {
	return e.text.String()
}

// readTree tokenizes r into an element tree. Namespaces are dropped; only
// local names are kept.
func readTree(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cdl.ErrParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, cdl.Parsef("unexpected second root element <%s>", el.name)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, cdl.Parsef("document has no root element")
	}
	return root, nil
}
