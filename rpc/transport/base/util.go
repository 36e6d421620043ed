package base

import (
	"errors"
	"net"
	"os"
)

// isTimeout reports whether err is an expired deadline. An expired deadline
// on a read only means that no data arrived yet.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
