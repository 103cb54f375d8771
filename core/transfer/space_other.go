//go:build !linux && !darwin && !freebsd

package transfer

func freeSpace(string) (int64, error) {
	return 0, ErrSpaceUnavailable
}
