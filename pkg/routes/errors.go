package routes

import "errors"

var (
	// ErrPagesRootNotFound is returned when the pages root does not exist.
	ErrPagesRootNotFound = errors.New("pages root not found")

	// ErrDiscover is returned when the pages tree cannot be read.
	ErrDiscover = errors.New("discover pages")

	// ErrInvalidPattern is returned for an exclude glob that does not compile.
	ErrInvalidPattern = errors.New("invalid exclude pattern")

	// ErrProbe is returned when a special file existence check fails for a
	// reason other than the file being absent.
	ErrProbe = errors.New("special file check failed")

	// ErrWrite is returned when the generated file cannot be written.
	ErrWrite = errors.New("write generated routes")
)
