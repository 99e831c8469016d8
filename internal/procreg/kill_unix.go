//go:build unix

package procreg

import (
	"syscall"

	"github.com/sirupsen/logrus"
)

// killProcess sends SIGTERM to the process group first so helper processes
// spawned by the downloader go with it, then falls back to the single pid.
func killProcess(pid int) bool {
	if err := syscall.Kill(-pid, syscall.SIGTERM); err == nil {
		return true
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		logrus.WithFields(logrus.Fields{"pid": pid, "error": err}).Warn("failed to kill process")
		return false
	}
	return true
}
