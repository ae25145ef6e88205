// Package process_gopsutil implements process.Source with gopsutil, for
// platforms without a native source or when explicitly selected.
package process_gopsutil

import (
	"fmt"
	"math"

	"procexporter/process"

	gops "github.com/shirou/gopsutil/v4/process"
)

// gopsutil reports CPU time as float seconds; ticks are whole nanoseconds.
var nanosecondTicks = process.IdentityRatio

// Source implements process.Source on top of gopsutil.
type Source struct{}

var _ process.Source = (*Source)(nil)

// NewSource creates a gopsutil-backed Source.
func NewSource() *Source {
	return &Source{}
}

// Timebase returns the identity ratio: TaskInfo already reports nanoseconds.
func (s *Source) Timebase() (process.TickRatio, error) {
	return nanosecondTicks, nil
}

// ListPIDs returns all PIDs gopsutil can see, capped at process.MinPIDSlots.
func (s *Source) ListPIDs() ([]process.ProcessID, error) {
	raw, err := gops.Pids()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	if len(raw) > process.MinPIDSlots {
		raw = raw[:process.MinPIDSlots]
	}

	pids := make([]process.ProcessID, 0, len(raw))
	for _, pid := range raw {
		pids = append(pids, process.ProcessID(pid))
	}
	return pids, nil
}

// TaskInfo gathers times, memory, parent, ids and create time for pid.
func (s *Source) TaskInfo(pid process.ProcessID) (process.TaskInfo, error) {
	p, err := gops.NewProcess(int32(pid))
	if err != nil {
		return process.TaskInfo{}, fmt.Errorf("%w: pid %d: %w", process.ErrProcessGone, pid, err)
	}

	times, err := p.Times()
	if err != nil {
		return process.TaskInfo{}, fmt.Errorf("pid %d times: %w", pid, err)
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return process.TaskInfo{}, fmt.Errorf("pid %d memory: %w", pid, err)
	}
	ppid, err := p.Ppid()
	if err != nil {
		return process.TaskInfo{}, fmt.Errorf("pid %d ppid: %w", pid, err)
	}
	uids, err := p.Uids()
	if err != nil {
		return process.TaskInfo{}, fmt.Errorf("pid %d uids: %w", pid, err)
	}
	gids, err := p.Gids()
	if err != nil {
		return process.TaskInfo{}, fmt.Errorf("pid %d gids: %w", pid, err)
	}
	created, err := p.CreateTime()
	if err != nil {
		return process.TaskInfo{}, fmt.Errorf("pid %d create time: %w", pid, err)
	}

	return process.TaskInfo{
		UserTicks:         secondsToNanos(times.User),
		SystemTicks:       secondsToNanos(times.System),
		ResidentBytes:     mem.RSS,
		ParentPID:         uint32(max(ppid, 0)),
		UID:               effective(uids),
		GID:               effective(gids),
		StartEpochSeconds: uint64(max(created, 0) / 1000),
	}, nil
}

// ExecutablePath resolves the executable through gopsutil.
func (s *Source) ExecutablePath(pid process.ProcessID) (string, error) {
	p, err := gops.NewProcess(int32(pid))
	if err != nil {
		return "", fmt.Errorf("%w: pid %d: %w", process.ErrProcessGone, pid, err)
	}

	exe, err := p.Exe()
	if err != nil {
		return "", fmt.Errorf("%w: pid %d: %w", process.ErrNoExecutable, pid, err)
	}
	return exe, nil
}

// effective picks the effective id out of gopsutil's [real, effective, ...]
// list, falling back to the first entry.
func effective(ids []uint32) uint32 {
	switch len(ids) {
	case 0:
		return 0
	case 1:
		return ids[0]
	default:
		return ids[1]
	}
}

func secondsToNanos(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	nanos := math.Round(seconds * 1e9)
	if nanos >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(nanos)
}
