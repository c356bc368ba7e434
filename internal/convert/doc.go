// Package convert runs batch conversions between CDL file formats.
//
// A Converter expands its inputs (files, or directories scanned for known
// extensions), parses each one into a registry shared by the whole run, and
// writes the requested output formats. Every run gets a uuid, holds an
// advisory lock on the output directory, and is recorded through an optional
// Recorder such as the history store.
//
// Correction ids must be unique across a run, exactly as they must be within
// one registry. A later file that reuses an id fails with cdl.ErrDuplicateID
// and leaves the earlier file's outputs untouched.
package convert
