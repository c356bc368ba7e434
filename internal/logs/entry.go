package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entry is one decoded log line. Lines that are not JSON keep only Raw and
// Message.
type Entry struct {
	Raw       string
	Time      string
	Level     string
	Message   string
	Component string
	RunID     string
	Input     string
	Fields    map[string]any
}

var reservedKeys = map[string]struct{}{
	"ts":        {},
	"level":     {},
	"msg":       {},
	"component": {},
	"run_id":    {},
	"input":     {},
}

// ParseEntry decodes a line written by the JSON log handler.
func ParseEntry(line string) Entry {
	entry := Entry{Raw: line, Message: line}
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return entry
	}
	entry.Time = stringField(payload, "ts")
	entry.Level = strings.ToLower(stringField(payload, "level"))
	entry.Message = stringField(payload, "msg")
	entry.Component = stringField(payload, "component")
	entry.RunID = stringField(payload, "run_id")
	entry.Input = stringField(payload, "input")
	for key, value := range payload {
		if _, ok := reservedKeys[key]; ok {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]any)
		}
		entry.Fields[key] = value
	}
	return entry
}

// Format renders e on one line, close to the console handler's layout.
func (e Entry) Format() string {
	if e.Time == "" && e.Level == "" {
		return e.Raw
	}
	var b strings.Builder
	b.WriteString(e.Time)
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(e.Level))
	if e.RunID != "" {
		b.WriteString(" [")
		b.WriteString(shortRun(e.RunID))
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	if e.Component != "" {
		b.WriteString(e.Component)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Input != "" {
		fmt.Fprintf(&b, " input=%s", e.Input)
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, e.Fields[key])
	}
	return b.String()
}

func stringField(payload map[string]any, key string) string {
	if value, ok := payload[key].(string); ok {
		return value
	}
	return ""
}

func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
