package pagination

import "errors"

var (
	// ErrMissingResource is returned before any fetch when the resource name is empty.
	ErrMissingResource = errors.New("resource name is required")

	// ErrMissingTotalCount is returned when the probe response has no usable total count header.
	ErrMissingTotalCount = errors.New("total count unavailable")
)
