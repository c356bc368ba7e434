package cdl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse          = errors.New("parse error")
	ErrDuplicateID    = errors.New("duplicate color correction id")
	ErrMalformedValue = errors.New("malformed value")
	ErrIO             = errors.New("io error")
)

// ValueError reports a numeric field whose text could not be parsed.
type ValueError struct {
	Field string
	Text  string
	Err   error
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("%s: %s %q", ErrMalformedValue, e.Field, e.Text)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValueError) Is(target error) bool {
	return target == ErrMalformedValue
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// Wrap tags err with one of the sentinel markers above and prefixes the
// location (usually a file name) and operation.
func Wrap(marker error, location, operation string, err error) error {
	if marker == nil {
		marker = ErrParse
	}
	detail := joinDetail(location, operation)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	if errors.Is(err, marker) {
		return fmt.Errorf("%s: %w", detail, err)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Parsef builds an ErrParse error with a formatted message.
func Parsef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func joinDetail(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "cdl"
	}
	return strings.Join(kept, ": ")
}
