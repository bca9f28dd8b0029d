package partial

import "errors"

var (
	// ErrResource marks a missing input file. Tasks failing with it are
	// skipped rather than reported as failures.
	ErrResource = errors.New("missing resource")
	// ErrNoStructure marks a Q kernel requested without a structure model.
	ErrNoStructure = errors.New("no structure model")
)
