package process

import (
	"errors"
	"fmt"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Predicate decides whether a valid record is kept in the snapshot.
type Predicate func(ProcessRecord) bool

// Collector builds a Snapshot from a Source. It holds no per-pass state, so a
// single Collector can serve concurrent connections.
type Collector struct {
	src  Source
	keep Predicate
	log  *logger.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithPredicate drops records for which keep returns false.
func WithPredicate(keep Predicate) CollectorOption {
	return func(c *Collector) {
		c.keep = keep
	}
}

// WithLogger replaces the collector's logger.
func WithLogger(log *logger.Logger) CollectorOption {
	return func(c *Collector) {
		c.log = log
	}
}

// NewCollector creates a Collector reading from src.
func NewCollector(src Source, opts ...CollectorOption) *Collector {
	c := &Collector{
		src: src,
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "collector")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect enumerates all visible processes and returns the valid ones in
// enumeration order. Per-process failures are absorbed: the process is
// simply omitted. Collect never returns an error.
func (c *Collector) Collect() Snapshot {
	ratio, err := c.src.Timebase()
	if err == nil {
		err = ratio.Validate()
	}
	if err != nil {
		c.log.Warn("Timebase unavailable, using identity ratio: ", err)
		ratio = IdentityRatio
	}

	pids, err := c.src.ListPIDs()
	if err != nil {
		c.log.Warn("Failed to list processes: ", err)
		return Snapshot{}
	}

	snapshot := make(Snapshot, 0, len(pids))
	for _, pid := range pids {
		record, err := c.record(pid, ratio)
		if err != nil {
			continue
		}
		snapshot = append(snapshot, record)
	}

	c.log.Debugln("Collected", len(snapshot), "of", len(pids), "processes")
	return snapshot
}

// errFiltered marks a valid record dropped by the predicate.
var errFiltered = errors.New("filtered out")

// record is one step of the fold over PIDs. The error says why pid was
// omitted: ErrNoParent, ErrNoExecutable, a Source error, or errFiltered.
func (c *Collector) record(pid ProcessID, ratio TickRatio) (ProcessRecord, error) {
	if pid == 0 {
		return ProcessRecord{}, fmt.Errorf("%w: pid 0", ErrNoParent)
	}

	info, err := c.src.TaskInfo(pid)
	if err != nil {
		return ProcessRecord{}, err
	}
	if info.ParentPID == 0 {
		return ProcessRecord{}, fmt.Errorf("%w: pid %d", ErrNoParent, pid)
	}

	path, err := c.src.ExecutablePath(pid)
	if err != nil {
		return ProcessRecord{}, err
	}
	if path == "" {
		return ProcessRecord{}, fmt.Errorf("%w: pid %d", ErrNoExecutable, pid)
	}

	record := ProcessRecord{
		PID:               pid,
		ExecutablePath:    path,
		CPUUserNanos:      ratio.Nanos(info.UserTicks),
		CPUSystemNanos:    ratio.Nanos(info.SystemTicks),
		ResidentBytes:     info.ResidentBytes,
		ParentPID:         info.ParentPID,
		UID:               info.UID,
		GID:               info.GID,
		StartEpochSeconds: info.StartEpochSeconds,
	}
	if !record.Valid() {
		return ProcessRecord{}, fmt.Errorf("invalid record for pid %d", pid)
	}
	if c.keep != nil && !c.keep(record) {
		return ProcessRecord{}, errFiltered
	}
	return record, nil
}
