//go:build unix

package bench

import (
	"time"

	"golang.org/x/sys/unix"
)

type rusageClock struct{}

func init() {
	processCPU = rusageClock{}
}

func (rusageClock) Now() (CPUTime, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return CPUTime{}, err
	}
	return CPUTime{
		User:   time.Duration(ru.Utime.Nano()),
		System: time.Duration(ru.Stime.Nano()),
	}, nil
}
