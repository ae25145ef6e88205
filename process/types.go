package process

// ProcessID represents a unique identifier for a process
type ProcessID int32

// TaskInfo is the raw accounting block a Source returns for one PID.
// CPU times are in the source's native tick unit.
type TaskInfo struct {
	UserTicks         uint64 // cumulative user-mode CPU ticks
	SystemTicks       uint64 // cumulative kernel-mode CPU ticks
	ResidentBytes     uint64 // resident memory in bytes
	ParentPID         uint32 // 0 for kernel-owned or unattributable processes
	UID               uint32
	GID               uint32
	StartEpochSeconds uint64 // wall-clock start, unix seconds
}

// ProcessRecord is one live, attributable process in a Snapshot.
type ProcessRecord struct {
	PID               ProcessID
	ExecutablePath    string
	CPUUserNanos      uint64
	CPUSystemNanos    uint64
	ResidentBytes     uint64
	ParentPID         uint32
	UID               uint32
	GID               uint32
	StartEpochSeconds uint64
}

// Valid reports whether the record may be emitted.
func (r ProcessRecord) Valid() bool {
	return r.PID != 0 && r.ParentPID != 0 && r.ExecutablePath != ""
}

// CPUUserSeconds returns the user CPU time truncated to whole seconds.
func (r ProcessRecord) CPUUserSeconds() uint64 {
	return NanosToSeconds(r.CPUUserNanos)
}

// CPUSystemSeconds returns the system CPU time truncated to whole seconds.
func (r ProcessRecord) CPUSystemSeconds() uint64 {
	return NanosToSeconds(r.CPUSystemNanos)
}

// Snapshot is the ordered set of records collected in one pass.
// It is never mutated after Collect returns.
type Snapshot []ProcessRecord
