//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package instance

func osVersion() string {
	return ""
}
