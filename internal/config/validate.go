package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"cdlconvert/internal/cdl"
)

const maxPrecision = 17

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if len(c.Convert.OutputFormats) == 0 {
		return errors.New("convert.output_formats must include at least one format")
	}
	for _, name := range c.Convert.OutputFormats {
		format, err := cdl.ParseFormat(name)
		if err != nil || !format.Writable() {
			return fmt.Errorf("convert.output_formats: %q is not a writable format (use cc, ccc, or cdl)", name)
		}
	}
	if c.Convert.Precision < -1 || c.Convert.Precision > maxPrecision {
		return fmt.Errorf("convert.precision must be between -1 and %d", maxPrecision)
	}
	if err := validateEncoding(c.Convert.InputEncoding); err != nil {
		return fmt.Errorf("convert.input_encoding: %w", err)
	}
	return nil
}

func validateEncoding(label string) error {
	switch label {
	case "utf-8", "utf8":
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return err
	}
	if enc == nil {
		return fmt.Errorf("charset %q is not supported", label)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
}
