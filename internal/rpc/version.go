// Package rpc implements the metalmesh control-plane JSON-RPC transport.
package rpc

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a "<major>.<minor>" RPC API version pair.
type Version struct {
	Major int
	Minor int
}

// ParseVersion parses a "<major>.<minor>" string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid RPC API version %q: want <major>.<minor>", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("invalid major component in RPC API version %q", s)
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return Version{}, fmt.Errorf("invalid minor component in RPC API version %q", s)
	}

	return Version{Major: major, Minor: minor}, nil
}

// String formats the version back to "<major>.<minor>".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CanSend reports whether a requested version may be sent under a cap.
// Majors must match exactly; the requested minor must not exceed the
// cap's minor. Used for rolling-upgrade compatibility.
func CanSend(requested, cap Version) bool {
	return requested.Major == cap.Major && requested.Minor <= cap.Minor
}
