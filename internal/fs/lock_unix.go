//go:build unix

package fs

import (
	"errors"

	"golang.org/x/sys/unix"
)

type fder interface {
	Fd() uintptr
}

// Lock takes an exclusive advisory lock on f, blocking until it is
// available. The lock is released when f is closed. Files without a
// descriptor are not locked.
func Lock(f File) error {
	d, ok := f.(fder)
	if !ok {
		return nil
	}
	for {
		err := unix.Flock(int(d.Fd()), unix.LOCK_EX)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
