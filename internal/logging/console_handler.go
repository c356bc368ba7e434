package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const colorReset = "\x1b[0m"

var levelColors = map[string]string{
	"ERROR": "\x1b[31m",
	"WARN":  "\x1b[33m",
	"INFO":  "\x1b[36m",
	"DEBUG": "\x1b[90m",
}

// consoleHandler writes one line per record:
//
//	2026-01-02 15:04:05 WARN [3f2a9c1e] convert: negative slope correction_id=sh010
//
// Top level component and run_id attributes go into the header instead of
// the field list. Attributes added through WithAttrs are rendered once.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	color     bool

	groupPrefix string
	component   string
	runID       string
	fields      string
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource, color bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), w: w, level: lvl, addSource: addSource, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	var fields strings.Builder
	fields.WriteString(h.fields)
	for _, attr := range attrs {
		next.appendAttr(&fields, h.groupPrefix, attr)
	}
	next.fields = fields.String()
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groupPrefix = h.groupPrefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	// header collects component and run_id carried by the record itself.
	header := *h
	var fields strings.Builder
	fields.WriteString(h.fields)
	record.Attrs(func(attr slog.Attr) bool {
		header.appendAttr(&fields, h.groupPrefix, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var line strings.Builder
	line.Grow(96 + fields.Len())
	line.WriteString(formatTimestamp(ts))
	line.WriteByte(' ')
	line.WriteString(h.levelText(record.Level))
	line.WriteByte(' ')
	if header.runID != "" {
		line.WriteString("[" + shortRunID(header.runID) + "] ")
	}
	if header.component != "" {
		line.WriteString(header.component + ": ")
	}
	line.WriteString(msg)
	if h.addSource {
		if src := record.Source(); src != nil {
			line.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	line.WriteString(fields.String())
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

// appendAttr renders attr as " key=value", flattening groups into dotted
// keys. The first top level component and run_id are captured on h.
func (h *consoleHandler) appendAttr(fields *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			h.appendAttr(fields, prefix, member)
		}
		return
	}
	if prefix == "" {
		switch attr.Key {
		case FieldComponent:
			if h.component == "" {
				h.component = plainValue(attr.Value)
			}
			return
		case FieldRunID:
			if h.runID == "" {
				h.runID = plainValue(attr.Value)
			}
			return
		}
	}

	key := prefix + attr.Key
	if attr.Key == "" {
		key = strings.TrimSuffix(prefix, ".")
	}
	if key == "" {
		return
	}
	fields.WriteByte(' ')
	fields.WriteString(key)
	fields.WriteByte('=')
	fields.WriteString(quotedValue(attr.Value))
}

func (h *consoleHandler) levelText(level slog.Level) string {
	var label string
	switch {
	case level >= slog.LevelError:
		label = "ERROR"
	case level >= slog.LevelWarn:
		label = "WARN"
	case level >= slog.LevelInfo:
		label = "INFO"
	default:
		label = "DEBUG"
	}
	if !h.color {
		return label
	}
	return levelColors[label] + label + colorReset
}

// shortRunID keeps the first uuid group so console lines stay narrow.
func shortRunID(id string) string {
	if before, _, found := strings.Cut(id, "-"); found && before != "" {
		return before
	}
	return id
}
