package bench

// cpuClock reads the processor time the current process has consumed so far.
type cpuClock interface {
	Now() (CPUTime, error)
}

var processCPU cpuClock = nopCPUClock{}

type nopCPUClock struct{}

func (nopCPUClock) Now() (CPUTime, error) { return CPUTime{}, nil }

func cpuDelta(before, after CPUTime) CPUTime {
	d := CPUTime{User: after.User - before.User, System: after.System - before.System}
	if d.User < 0 {
		d.User = 0
	}
	if d.System < 0 {
		d.System = 0
	}
	return d
}
