package convert

import (
	"errors"
	"fmt"
	"strings"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/config"
)

// Options control one conversion run.
type Options struct {
	Formats     []cdl.Format
	OutputDir   string
	Overwrite   bool
	HaltOnError bool
	// DryRun parses and plans outputs without writing or locking anything.
	DryRun bool
	// Check logs sanity warnings for unusual but valid values.
	Check         bool
	Precision     int
	InputEncoding string
	LockOutputDir bool
}

// OptionsFromConfig builds run options from the [convert] and [paths]
// sections. Flags override the result field by field.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, errors.New("config is nil")
	}
	formats, err := ParseFormats(cfg.Convert.OutputFormats)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Formats:       formats,
		OutputDir:     cfg.Paths.OutputDir,
		Overwrite:     cfg.Convert.Overwrite,
		HaltOnError:   cfg.Convert.HaltOnError,
		Precision:     cfg.Convert.Precision,
		InputEncoding: cfg.Convert.InputEncoding,
		LockOutputDir: cfg.Convert.LockOutputDir,
	}, nil
}

// ParseFormats turns names such as "cc" or ".ccc" into writable formats,
// dropping duplicates.
func ParseFormats(names []string) ([]cdl.Format, error) {
	var formats []cdl.Format
	seen := make(map[cdl.Format]struct{}, len(names))
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			format, err := cdl.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !format.Writable() {
				return nil, fmt.Errorf("format %q cannot be written", format)
			}
			if _, ok := seen[format]; ok {
				continue
			}
			seen[format] = struct{}{}
			formats = append(formats, format)
		}
	}
	return formats, nil
}

// Validate reports options a run cannot start with.
func (o Options) Validate() error {
	if len(o.Formats) == 0 {
		return errors.New("no output formats selected")
	}
	for _, format := range o.Formats {
		if !format.Writable() {
			return fmt.Errorf("format %q cannot be written", format)
		}
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		return errors.New("output directory is empty")
	}
	if o.Precision < -1 {
		return fmt.Errorf("precision %d is below -1", o.Precision)
	}
	return nil
}
