//go:build darwin && cgo

package main

import (
	"procexporter/process"
	"procexporter/process_darwin"
)

func nativeSource() (process.Source, error) {
	return process_darwin.NewSource(), nil
}
