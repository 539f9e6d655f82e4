//go:build unix

package timing

import (
	"time"

	"golang.org/x/sys/unix"
)

// ProcessCPUTime is the user plus system time consumed by this process.
func ProcessCPUTime() time.Duration {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0
	}
	return time.Duration(usage.Utime.Nano() + usage.Stime.Nano())
}
