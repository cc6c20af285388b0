package figure

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// IndexOutOfRangeError reports an index that violated its bound. What names
// the dimension ("row", "col" or "line").
type IndexOutOfRangeError struct {
	What  string
	Index int
	Bound int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range (bound %d)", e.What, e.Index, e.Bound)
}

func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

func outOfRange(what string, index, bound int) error {
	return &IndexOutOfRangeError{What: what, Index: index, Bound: bound}
}
