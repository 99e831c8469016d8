//go:build windows

package ytdlp

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
