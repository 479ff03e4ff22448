package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is returned when the input does not start with a snapshot
	// header.
	ErrBadMagic = errors.New("snapshot: bad magic")
)

// ErrUnsupportedVersion indicates a snapshot written by an incompatible
// format version.
type ErrUnsupportedVersion struct {
	Version byte
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("snapshot: unsupported version %d", e.Version)
}

// ErrUnsupportedFlags indicates a snapshot with a flag combination this
// implementation cannot decode.
type ErrUnsupportedFlags struct {
	Flags byte
}

func (e *ErrUnsupportedFlags) Error() string {
	return fmt.Sprintf("snapshot: unsupported flags %#x", e.Flags)
}
