// Package logs reads back the JSON log file written by cdlconvert.
//
// It tails the file with bounded memory, decodes each line into an Entry and
// filters entries by run id, component, level or free text, so `cdlconvert
// logs --run <id>` can show what one conversion did. Follow mode polls the file
// until the caller's context is cancelled.
package logs
