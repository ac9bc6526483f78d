package ir

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version constants for the attribute model and tool.
const (
	// IRVersion is the attribute JSON schema version.
	IRVersion = "1.0.0"

	// ToolVersion is the hwparam release version.
	ToolVersion = "0.1.0"
)

// CheckCompatible reports whether artifacts recorded under version stored
// can be read by this build. Majors must match; minor and patch may differ.
func CheckCompatible(stored string) error {
	v, err := semver.NewVersion(stored)
	if err != nil {
		return fmt.Errorf("invalid IR version %q: %w", stored, err)
	}

	if v.Major() != currentMajor() {
		return fmt.Errorf("IR version %s is incompatible with %s", v, IRVersion)
	}
	return nil
}

func currentMajor() uint64 {
	return semver.MustParse(IRVersion).Major()
}
