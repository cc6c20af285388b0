package canvas

import (
	"github.com/roffe/plotcanvas/pkg/figure"
	"github.com/roffe/plotcanvas/pkg/store"
)

var (
	// ErrNotFound means the figure a handle points at was removed or
	// replaced after the handle was issued.
	ErrNotFound = store.ErrNotFound

	// ErrHandleInvalid means the shared store can no longer be locked
	// because an earlier holder panicked. Every handle of the canvas
	// reports it from then on.
	ErrHandleInvalid = store.ErrPoisoned

	ErrIndexOutOfRange = figure.ErrIndexOutOfRange
)
