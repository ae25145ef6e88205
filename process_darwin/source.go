//go:build darwin && cgo

// Package process_darwin reads process accounting through libproc and the
// mach timebase.
package process_darwin

/*
#include <libproc.h>
#include <sys/proc_info.h>
#include <mach/mach_time.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"procexporter/process"

	"golang.org/x/sys/unix"
)

// Source implements process.Source with proc_listallpids, proc_pidinfo
// (PROC_PIDTASKALLINFO) and proc_pidpath.
type Source struct {
	slots int
}

var _ process.Source = (*Source)(nil)

// NewSource sizes the PID buffer to kern.maxproc, never below
// process.MinPIDSlots.
func NewSource() *Source {
	slots := process.MinPIDSlots
	if maxproc, err := unix.SysctlUint32("kern.maxproc"); err == nil && int(maxproc) > slots {
		slots = int(maxproc)
	}
	return &Source{slots: slots}
}

// Timebase returns the mach_timebase_info ratio.
func (s *Source) Timebase() (process.TickRatio, error) {
	var tb C.mach_timebase_info_data_t
	if kr := C.mach_timebase_info(&tb); kr != 0 {
		return process.TickRatio{}, fmt.Errorf("mach_timebase_info: kern_return %d", int(kr))
	}
	return process.TickRatio{Numer: uint64(tb.numer), Denom: uint64(tb.denom)}, nil
}

// ListPIDs lists up to s.slots PIDs; the rest are silently dropped.
func (s *Source) ListPIDs() ([]process.ProcessID, error) {
	buf := make([]C.pid_t, s.slots)
	n, err := C.proc_listallpids(unsafe.Pointer(&buf[0]), C.int(len(buf)*int(unsafe.Sizeof(buf[0]))))
	if n < 0 {
		return nil, fmt.Errorf("proc_listallpids: %w", err)
	}

	count := min(int(n), len(buf))
	pids := make([]process.ProcessID, 0, count)
	for _, pid := range buf[:count] {
		pids = append(pids, process.ProcessID(pid))
	}
	return pids, nil
}

// TaskInfo fetches the combined task and BSD info block.
func (s *Source) TaskInfo(pid process.ProcessID) (process.TaskInfo, error) {
	var info C.struct_proc_taskallinfo
	size := C.int(unsafe.Sizeof(info))

	n, err := C.proc_pidinfo(C.int(pid), C.PROC_PIDTASKALLINFO, 0, unsafe.Pointer(&info), size)
	if n < size {
		if err != nil {
			return process.TaskInfo{}, fmt.Errorf("%w: pid %d: %w", process.ErrProcessGone, pid, err)
		}
		return process.TaskInfo{}, fmt.Errorf("%w: pid %d: short read %d", process.ErrProcessGone, pid, int(n))
	}

	return process.TaskInfo{
		UserTicks:         uint64(info.ptinfo.pti_total_user),
		SystemTicks:       uint64(info.ptinfo.pti_total_system),
		ResidentBytes:     uint64(info.ptinfo.pti_resident_size),
		ParentPID:         uint32(info.pbsd.pbi_ppid),
		UID:               uint32(info.pbsd.pbi_uid),
		GID:               uint32(info.pbsd.pbi_gid),
		StartEpochSeconds: uint64(info.pbsd.pbi_start_tvsec),
	}, nil
}

// ExecutablePath resolves the binary path with proc_pidpath.
func (s *Source) ExecutablePath(pid process.ProcessID) (string, error) {
	var buf [C.PROC_PIDPATHINFO_MAXSIZE]C.char

	n, err := C.proc_pidpath(C.int(pid), unsafe.Pointer(&buf[0]), C.uint32_t(len(buf)))
	if n <= 0 {
		if err != nil {
			return "", fmt.Errorf("%w: pid %d: %w", process.ErrNoExecutable, pid, err)
		}
		return "", fmt.Errorf("%w: pid %d", process.ErrNoExecutable, pid)
	}
	return C.GoString(&buf[0]), nil
}
