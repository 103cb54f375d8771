package transfer

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

var ErrSpaceUnavailable = errors.New("free space cannot be determined on this platform")

// FreeSpace returns the bytes available to unprivileged users on the volume holding `dir`,
// minus `reserved`. It is never negative.
func FreeSpace(dir string, reserved int64) (int64, error) {
	free, err := freeSpace(dir)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "measuring free space of %s", dir)
	}
	if free -= reserved; free < 0 {
		return 0, nil
	}
	return free, nil
}
