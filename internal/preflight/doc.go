// Package preflight checks the filesystem paths cdlconvert writes to.
//
// The convert command runs CheckWritableTarget on the output directory before
// parsing anything, so a read-only destination fails fast. "config validate"
// prints the RunAll results.
package preflight
