package process

// Source is the OS capability the collector reads from. Each call is a
// fallible black box; implementations must be safe for concurrent use since
// every connection collects on its own.
type Source interface {
	// Timebase returns the ratio converting native CPU ticks to nanoseconds.
	Timebase() (TickRatio, error)

	// ListPIDs returns the currently visible process IDs in OS order.
	ListPIDs() ([]ProcessID, error)

	// TaskInfo returns the accounting block for pid.
	TaskInfo(pid ProcessID) (TaskInfo, error)

	// ExecutablePath resolves the absolute path of the binary backing pid.
	ExecutablePath(pid ProcessID) (string, error)
}
