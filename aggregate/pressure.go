package aggregate

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/amazon-ion/ion-hash-test-driver/logger"
)

// memoryWarnPercent is the used-memory threshold above which spawning a
// full pool of child processes is likely to thrash.
const memoryWarnPercent = 90.0

// warnResourcePressure logs a warning when the host looks too loaded for
// the configured pool size. Purely advisory; the run proceeds either way.
func warnResourcePressure(workers int) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Debugw("Unable to read memory stats", "error", err)
	} else if vm.UsedPercent > memoryWarnPercent {
		logger.Warnw("High memory pressure before run",
			"used_percent", vm.UsedPercent,
			"available_mb", vm.Available/1024/1024,
			"workers", workers)
	}

	if cpus := runtime.NumCPU(); workers > 2*cpus {
		logger.Warnw("Worker count exceeds twice the CPU count",
			"workers", workers,
			"cpus", cpus)
	}
}
