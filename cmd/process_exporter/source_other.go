//go:build !linux && !(darwin && cgo)

package main

import (
	"procexporter/process"
	"procexporter/process_gopsutil"
)

func nativeSource() (process.Source, error) {
	return process_gopsutil.NewSource(), nil
}
