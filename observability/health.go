package observability

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is the snapshot served on /healthz.
type ProcessStats struct {
	PID         int32   `json:"pid"`
	Status      string  `json:"status"`
	RSSBytes    uint64  `json:"rss_bytes"`
	CPUPercent  float64 `json:"cpu_percent"`
	Goroutines  int     `json:"goroutines"`
	OnlineUsers int     `json:"online_users"`
}

// SelfProcess returns the gopsutil handle of the running process.
func SelfProcess() (*process.Process, error) {
	return process.NewProcess(int32(os.Getpid()))
}

// ReadProcessStats retrieves memory, CPU and OS status for the given process.
func ReadProcessStats(p *process.Process) (ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return ProcessStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return ProcessStats{}, err
	}
	return ProcessStats{
		PID:        p.Pid,
		Status:     status,
		RSSBytes:   memInfo.RSS,
		CPUPercent: cpuPercent,
		Goroutines: runtime.NumGoroutine(),
	}, nil
}
