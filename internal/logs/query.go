package logs

import "strings"

// Query filters entries. Empty fields match everything.
type Query struct {
	// RunID matches entries whose run id starts with it.
	RunID     string
	Component string
	// Level is the minimum level: debug, info, warn or error.
	Level  string
	Search string
}

var levelRank = map[string]int{
	"debug":   0,
	"info":    1,
	"warn":    2,
	"warning": 2,
	"error":   3,
}

// Matches reports whether e passes every filter in q.
func (q Query) Matches(e Entry) bool {
	if q.RunID != "" && !strings.HasPrefix(e.RunID, q.RunID) {
		return false
	}
	if q.Component != "" && !strings.EqualFold(e.Component, q.Component) {
		return false
	}
	if floor, ok := levelRank[strings.ToLower(q.Level)]; ok {
		if rank, known := levelRank[e.Level]; known && rank < floor {
			return false
		}
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(e.Raw), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

func (q Query) empty() bool {
	return q == Query{}
}
