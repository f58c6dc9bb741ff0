package main

import (
	"errors"

	"github.com/hearthcast/hearthcast/internal/adapters/cdclient"
)

// Exit codes surfaced to scripts.
const (
	exitOK       = 0
	exitRuntime  = 1
	exitUsage    = 2
	exitNotFound = 4
)

// exitCode maps UPnP faults to CLI exit codes.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var fault *cdclient.UPnPError
	if errors.As(err, &fault) {
		switch fault.Code {
		case 402:
			return exitUsage
		case 701, 710:
			return exitNotFound
		}
	}
	return exitRuntime
}
