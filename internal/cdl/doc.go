// Package cdl holds the canonical in-memory model for ASC Color Decision List
// metadata: slope/offset/power and saturation values, named color corrections,
// collections, and decision lists.
//
// Corrections are created through a Registry, which enforces id uniqueness for
// everything parsed in one session. Parsers in internal/formats populate these
// types; serializers read them back out. Nothing here touches the filesystem.
package cdl
