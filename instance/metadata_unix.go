//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package instance

import "golang.org/x/sys/unix"

// osVersion returns the kernel release of the running system.
func osVersion() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}

	return unix.ByteSliceToString(u.Release[:])
}
