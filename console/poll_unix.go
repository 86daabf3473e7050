// +build linux darwin dragonfly freebsd netbsd openbsd

package console

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"
)

// pollIn performs a zero timeout readiness check on the given fd.
// A zero timeout means poll(2) reports current state and returns,
// so this never blocks regardless of input state.
func pollIn(fd int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return false, err
		}
		return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

func isEINTR(err error) bool {
	return errors.Is(err, unix.EINTR)
}
