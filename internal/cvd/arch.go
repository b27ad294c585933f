// Package cvd resolves a directory of Android Cuttlefish image files
// into the partition specifications the planner consumes, and builds the
// persistent components (u-boot environment, vbmeta, bootconfig) the
// properties disk needs.
package cvd

import (
	"fmt"
	"runtime"
)

// Arch selects the architecture of the source images.
type Arch string

const (
	ArchX86_64  Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
)

// ParseArch validates an architecture name, accepting the common Go
// spellings as aliases.
func ParseArch(s string) (Arch, error) {
	switch s {
	case "x86_64", "amd64":
		return ArchX86_64, nil
	case "aarch64", "arm64":
		return ArchAarch64, nil
	default:
		return "", fmt.Errorf("unsupported architecture %q (want x86_64 or aarch64)", s)
	}
}

// HostArch returns the architecture of the machine cvdisk runs on.
func HostArch() Arch {
	if runtime.GOARCH == "arm64" {
		return ArchAarch64
	}
	return ArchX86_64
}
