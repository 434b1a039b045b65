// Package hostinfo describes the machine a benchmark ran on.
package hostinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
)

// HostInfo is the subset of host parameters printed above a run.
type HostInfo struct {
	OS            string
	Arch          string
	GoVersion     string
	CPUModel      string
	CPUNumLogical int
	CPUMaxMHz     int
}

// Get collects host parameters. CPU lookup failures are reported inline in
// CPUModel rather than aborting the run.
func Get() *HostInfo {
	hi := &HostInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
	applyCPUInfo(hi, cpu.Info)
	return hi
}

func applyCPUInfo(hi *HostInfo, info func() ([]cpu.InfoStat, error)) {
	rawCPUInfo, err := info()
	if err != nil {
		hi.CPUModel = fmt.Sprintf("[ERR:%s]", err)
		return
	}
	if len(rawCPUInfo) == 0 {
		hi.CPUModel = "[ERR:no logical cpus]"
		return
	}

	hi.CPUNumLogical = runtime.NumCPU()
	hi.CPUModel = rawCPUInfo[0].ModelName
	hi.CPUMaxMHz = int(rawCPUInfo[0].Mhz)
}

func (hi *HostInfo) String() string {
	return fmt.Sprintf("%s/%s %s, %s (%d logical, %d MHz)",
		hi.OS, hi.Arch, hi.GoVersion, hi.CPUModel, hi.CPUNumLogical, hi.CPUMaxMHz)
}
