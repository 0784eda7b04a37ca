package catalog

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed filter input, in
	// particular an empty id list.
	ErrInvalidArgument = errors.New("invalid argument")
)
