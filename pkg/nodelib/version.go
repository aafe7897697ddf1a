package nodelib

import (
	"github.com/matzehuels/vxgraph/pkg/errors"
)

// Version is an OpenVX specification version supported by the library.
type Version string

// Supported OpenVX versions.
const (
	Version101 Version = "1.0.1"
	Version11  Version = "1.1"
	Version12  Version = "1.2"

	// DefaultVersion is used when no version is requested.
	DefaultVersion = Version12
)

// Versions returns the supported versions, oldest first.
func Versions() []Version {
	return []Version{Version101, Version11, Version12}
}

// ParseVersion validates a version string. An empty string selects
// [DefaultVersion].
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return DefaultVersion, nil
	}
	for _, v := range Versions() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidVersion, "OpenVX version %s is not supported (must be one of: 1.0.1, 1.1, 1.2)", s)
}
