package domain

import "errors"

var (
	// ErrNotFound covers absent and expired artifacts alike; callers must
	// not be able to tell the difference.
	ErrNotFound = errors.New("not found")
)
