package core

import (
	"fmt"

	"go.uber.org/zap"
)

// Version of the qubera client, resolved once at startup. A -ldflags build
// value wins over the configured one so released binaries always report
// their tag.
var Version string

const NoVersion = "no_version_info"

func SetVersion(c *Conf, versionByBuildFlag string) {
	Version = resolveVersion(c, versionByBuildFlag)
	zap.L().Info(fmt.Sprintf("qubera client version is %s", Version))
}

func resolveVersion(c *Conf, versionByBuildFlag string) string {
	if versionByBuildFlag != "" {
		return versionByBuildFlag
	}
	if c.Version != "" {
		return c.Version
	}
	return NoVersion
}
