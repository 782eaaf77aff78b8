//go:build linux
// +build linux

package main

import (
	"os"
	_ "time/tzdata"

	reaper "github.com/ramr/go-reaper"
)

// reap zombie children when running as init process of a container
//
//nolint:gochecknoinits
func init() {
	if os.Getpid() == 1 {
		go reaper.Reap()
	}
}
