// Package process_filter compiles boolean expressions that select which
// processes are exported.
package process_filter

import (
	"fmt"

	"procexporter/process"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled expression over a process record.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile type-checks expression against the record environment.
// An empty expression yields a nil Filter, which matches everything.
func Compile(expression string) (*Filter, error) {
	if expression == "" {
		return nil, nil
	}

	program, err := expr.Compile(expression, expr.Env(environment(process.ProcessRecord{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile process filter %q: %w", expression, err)
	}

	return &Filter{source: expression, program: program}, nil
}

// Match evaluates the filter for record. Evaluation errors keep the record.
func (f *Filter) Match(record process.ProcessRecord) bool {
	if f == nil {
		return true
	}

	out, err := expr.Run(f.program, environment(record))
	if err != nil {
		return true
	}
	keep, ok := out.(bool)
	return !ok || keep
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

func environment(r process.ProcessRecord) map[string]interface{} {
	return map[string]interface{}{
		"pid":                int64(r.PID),
		"ppid":               int64(r.ParentPID),
		"uid":                int64(r.UID),
		"gid":                int64(r.GID),
		"path":               r.ExecutablePath,
		"start_time":         int64(r.StartEpochSeconds),
		"cpu_user_seconds":   int64(r.CPUUserSeconds()),
		"cpu_system_seconds": int64(r.CPUSystemSeconds()),
		"resident_bytes":     int64(r.ResidentBytes),
	}
}
