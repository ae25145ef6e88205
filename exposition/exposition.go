// Package exposition renders a process snapshot in the Prometheus text
// exposition format.
package exposition

import (
	"strconv"
	"strings"

	"procexporter/process"
)

// Names of the exported metric families.
const (
	StartTimeMetric      = "process_start_time_seconds"
	CPUSecondsMetric     = "process_cpu_seconds_total"
	ResidentMemoryMetric = "process_resident_memory_bytes"
)

// family is the HELP/TYPE metadata of one metric.
type family struct {
	name string
	help string
	kind string
}

var families = []family{
	{StartTimeMetric, "Start time of the process since unix epoch in seconds", "gauge"},
	{CPUSecondsMetric, "Total user and system CPU time spent in seconds", "counter"},
	{ResidentMemoryMetric, "Resident memory size in bytes", "gauge"},
}

// Format renders snapshot. Lines are separated by a single newline and the
// document has no trailing newline.
func Format(snapshot process.Snapshot) string {
	return strings.Join(Lines(snapshot), "\n")
}

// Lines returns the document one line at a time: two metadata lines per
// family, then four data lines per record in snapshot order.
func Lines(snapshot process.Snapshot) []string {
	lines := make([]string, 0, 2*len(families)+4*len(snapshot))
	for _, f := range families {
		lines = append(lines,
			"# HELP "+f.name+" "+f.help,
			"# TYPE "+f.name+" "+f.kind,
		)
	}

	for _, r := range snapshot {
		l := labels(r)
		lines = append(lines,
			sample(StartTimeMetric, l, r.StartEpochSeconds),
			sample(CPUSecondsMetric, l+`,mode="user"`, r.CPUUserSeconds()),
			sample(CPUSecondsMetric, l+`,mode="system"`, r.CPUSystemSeconds()),
			sample(ResidentMemoryMetric, l, r.ResidentBytes),
		)
	}
	return lines
}

// labels builds the shared label set. Values are written raw; a quote or
// newline in a path is not escaped.
func labels(r process.ProcessRecord) string {
	var b strings.Builder
	b.WriteString(`pid="`)
	b.WriteString(strconv.FormatInt(int64(r.PID), 10))
	b.WriteString(`",ppid="`)
	b.WriteString(strconv.FormatUint(uint64(r.ParentPID), 10))
	b.WriteString(`",uid="`)
	b.WriteString(strconv.FormatUint(uint64(r.UID), 10))
	b.WriteString(`",gid="`)
	b.WriteString(strconv.FormatUint(uint64(r.GID), 10))
	b.WriteString(`",path="`)
	b.WriteString(r.ExecutablePath)
	b.WriteString(`"`)
	return b.String()
}

func sample(name, labels string, value uint64) string {
	return name + "{" + labels + "} " + strconv.FormatUint(value, 10)
}
