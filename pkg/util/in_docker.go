package util

import (
	"os"
	"strings"
)

// IsRunningInDocker reports whether the process runs inside a container.
func IsRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	b, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}

	return strings.Contains(string(b), "docker")
}
