package regindex

import (
	"errors"

	"github.com/hupe1980/regindex/index"
)

var (
	// ErrInvalidConfig is returned when an index configuration string
	// cannot be parsed.
	ErrInvalidConfig = errors.New("invalid index configuration")

	// ErrNotOpen is returned by queries on a cache whose indices are not
	// open.
	ErrNotOpen = index.ErrNotOpen

	// ErrNilListener is returned when a nil listener is added or removed.
	ErrNilListener = index.ErrNilListener
)
