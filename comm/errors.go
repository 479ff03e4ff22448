package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrGroupSize is returned when a group is created with fewer than one rank.
	ErrGroupSize = errors.New("comm: group size must be positive")
)

// ErrBufferCount indicates an AllToAll call with the wrong number of send
// buffers: callers must pass exactly one buffer per rank in the group.
type ErrBufferCount struct {
	Want int
	Got  int
}

func (e *ErrBufferCount) Error() string {
	return fmt.Sprintf("comm: all-to-all needs %d send buffers, got %d", e.Want, e.Got)
}
