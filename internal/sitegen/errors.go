package sitegen

import "errors"

var (
	// ErrMissingTemplate is returned when the configured page template cannot be read.
	ErrMissingTemplate = errors.New("page template not found")
	// ErrMissingStylesheet is returned when the configured stylesheet cannot be read.
	ErrMissingStylesheet = errors.New("stylesheet not found")
	// ErrOutputCollision is returned when two sources would publish the same output file.
	ErrOutputCollision = errors.New("output name collision")
)
