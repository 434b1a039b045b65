//go:build windows

package bench

import (
	"time"

	"golang.org/x/sys/windows"
)

// FILETIME values count 100ns ticks.
const hundredNSTicks = 100

type processTimesClock struct{}

func init() {
	processCPU = processTimesClock{}
}

func (processTimesClock) Now() (CPUTime, error) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(windows.CurrentProcess(), &creation, &exit, &kernel, &user); err != nil {
		return CPUTime{}, err
	}
	return CPUTime{
		User:   filetimeDuration(user),
		System: filetimeDuration(kernel),
	}, nil
}

func filetimeDuration(ft windows.Filetime) time.Duration {
	ticks := int64(ft.HighDateTime)<<32 | int64(ft.LowDateTime)
	return time.Duration(ticks * hundredNSTicks)
}
