package main

import (
	"procexporter/process"
	"procexporter/process_linux"
)

func nativeSource() (process.Source, error) {
	return process_linux.NewSource()
}
