// Package history records conversion runs in SQLite so past batches can be
// listed and inspected from the command line.
//
// Each run stores one row per input file with its outcome, correction count,
// and the paths written. Schema changes bump schemaVersion; users delete the
// database to adopt a new schema.
package history
