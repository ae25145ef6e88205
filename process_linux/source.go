//go:build linux

// Package process_linux reads process accounting from procfs.
package process_linux

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"procexporter/process"

	"github.com/prometheus/procfs"
)

// userHZ is the kernel's USER_HZ, the unit of utime/stime/starttime in
// /proc/<pid>/stat. It is 100 on every architecture Linux exports to userspace.
const userHZ = 100

// Source implements process.Source on top of a procfs mount.
type Source struct {
	fs procfs.FS

	bootMu   sync.Mutex
	bootTime uint64 // zero until read successfully
}

var _ process.Source = (*Source)(nil)

// NewSource creates a Source reading the default /proc mount.
func NewSource() (*Source, error) {
	return NewSourceAt(procfs.DefaultMountPoint)
}

// NewSourceAt creates a Source reading a procfs tree mounted at mountPoint.
func NewSourceAt(mountPoint string) (*Source, error) {
	pfs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("open procfs at %s: %w", mountPoint, err)
	}
	return &Source{fs: pfs}, nil
}

// Timebase returns the USER_HZ to nanosecond ratio.
func (s *Source) Timebase() (process.TickRatio, error) {
	return process.TickRatio{Numer: 1_000_000_000, Denom: userHZ}, nil
}

// ListPIDs returns every numeric directory under the procfs mount.
func (s *Source) ListPIDs() ([]process.ProcessID, error) {
	procs, err := s.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	pids := make([]process.ProcessID, 0, len(procs))
	for _, p := range procs {
		pids = append(pids, process.ProcessID(p.PID))
	}
	return pids, nil
}

// TaskInfo reads /proc/<pid>/stat and /proc/<pid>/status.
func (s *Source) TaskInfo(pid process.ProcessID) (process.TaskInfo, error) {
	proc, err := s.fs.Proc(int(pid))
	if err != nil {
		return process.TaskInfo{}, gone(pid, err)
	}

	stat, err := proc.Stat()
	if err != nil {
		return process.TaskInfo{}, gone(pid, err)
	}

	status, err := proc.NewStatus()
	if err != nil {
		return process.TaskInfo{}, gone(pid, err)
	}

	bootTime, err := s.boot()
	if err != nil {
		return process.TaskInfo{}, err
	}

	return process.TaskInfo{
		UserTicks:         uint64(stat.UTime),
		SystemTicks:       uint64(stat.STime),
		ResidentBytes:     uint64(max(stat.ResidentMemory(), 0)),
		ParentPID:         uint32(max(stat.PPID, 0)),
		UID:               uint32(status.UIDs[1]), // effective
		GID:               uint32(status.GIDs[1]), // effective
		StartEpochSeconds: bootTime + stat.Starttime/userHZ,
	}, nil
}

// ExecutablePath resolves the /proc/<pid>/exe link.
func (s *Source) ExecutablePath(pid process.ProcessID) (string, error) {
	proc, err := s.fs.Proc(int(pid))
	if err != nil {
		return "", gone(pid, err)
	}

	exe, err := proc.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: pid %d: %w", process.ErrNoExecutable, pid, err)
	}
	if exe == "" {
		return "", fmt.Errorf("%w: pid %d", process.ErrNoExecutable, pid)
	}
	return exe, nil
}

// boot returns the system boot time from the btime line of <mount>/stat.
// A successful read is cached; boot time does not change while the exporter
// runs. Failures are retried on the next call.
func (s *Source) boot() (uint64, error) {
	s.bootMu.Lock()
	defer s.bootMu.Unlock()

	if s.bootTime != 0 {
		return s.bootTime, nil
	}
	stat, err := s.fs.Stat()
	if err != nil {
		return 0, fmt.Errorf("read boot time: %w", err)
	}
	s.bootTime = stat.BootTime
	return s.bootTime, nil
}

func gone(pid process.ProcessID, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: pid %d", process.ErrProcessGone, pid)
	}
	return fmt.Errorf("pid %d: %w", pid, err)
}
