package bench

import "time"

// State is where a run is in its lifecycle.
type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CPUTime is the processor time the process spent while a sample ran.
type CPUTime struct {
	User   time.Duration
	System time.Duration
}

// Sample is one measured execution of a workload.
type Sample struct {
	Workload string
	Index    int
	Start    time.Time
	End      time.Time
	Result   Result
	CPU      CPUTime
}

// Duration is End - Start, clamped at zero.
func (s Sample) Duration() time.Duration {
	d := s.End.Sub(s.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Report is the ordered list of samples taken for one workload. Samples[i]
// is always the i-th successful repeat.
type Report struct {
	Workload string
	Samples  []Sample
	Failures []*WorkloadExecutionError
	State    State
}

// Durations returns the sample durations in execution order.
func (r *Report) Durations() []time.Duration {
	out := make([]time.Duration, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Duration()
	}
	return out
}

// MeanCPU is the average user and system time per sample.
func (r *Report) MeanCPU() CPUTime {
	if len(r.Samples) == 0 {
		return CPUTime{}
	}
	var total CPUTime
	for _, s := range r.Samples {
		total.User += s.CPU.User
		total.System += s.CPU.System
	}
	n := time.Duration(len(r.Samples))
	return CPUTime{User: total.User / n, System: total.System / n}
}
