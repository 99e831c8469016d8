//go:build windows

package procreg

import (
	"os/exec"
	"strconv"

	"github.com/sirupsen/logrus"
)

// killProcess terminates the process and its whole child tree via taskkill.
func killProcess(pid int) bool {
	out, err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		logrus.WithFields(logrus.Fields{"pid": pid, "error": err, "output": string(out)}).Warn("taskkill failed")
		return false
	}
	return true
}
