package convert

import "errors"

var (
	// ErrNoInputs means none of the given paths held a supported file.
	ErrNoInputs = errors.New("no input files")
	// ErrOutputExists is returned for a file whose output already exists and
	// overwriting is off.
	ErrOutputExists = errors.New("output already exists")
	// ErrOutputCollision means two outputs of one run map to the same path.
	ErrOutputCollision = errors.New("output path collision")
	// ErrOutputNotWritable is returned by the output directory preflight.
	ErrOutputNotWritable = errors.New("output directory not writable")
	// ErrOutputLocked means another run holds the output directory lock.
	ErrOutputLocked = errors.New("output directory locked by another run")
	// ErrHalted wraps the file error that stopped a run with halt-on-error set.
	ErrHalted = errors.New("conversion halted")
)
