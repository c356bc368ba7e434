package formats

import (
	"bufio"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"cdlconvert/internal/cdl"
)

// TextOptions controls how the line based formats are read.
type TextOptions struct {
	// Encoding is an IANA charset label. Empty means UTF-8.
	Encoding string
}

var sopGroupPattern = regexp.MustCompile(`\(([^()]*)\)`)

// parseSOPGroups reads the "(s s s)(o o o)(p p p)" form used by ALE and FLEx.
func parseSOPGroups(field, text string) (*cdl.SOP, error) {
	groups := sopGroupPattern.FindAllStringSubmatch(text, -1)
	if len(groups) != 3 {
		return nil, &cdl.ValueError{Field: field, Text: text}
	}
	sop := cdl.NewSOP()
	setters := []func(string) error{sop.SetSlope, sop.SetOffset, sop.SetPower}
	for i, group := range groups {
		if err := setters[i](group[1]); err != nil {
			return nil, err
		}
	}
	return sop, nil
}

func readLines(r io.Reader, encoding string) ([]string, error) {
	decoded, err := decodeCharset(encoding, r)
	if err != nil {
		return nil, err
	}
	var lines []string
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func fileStem(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return "cdl"
	}
	return stem
}
