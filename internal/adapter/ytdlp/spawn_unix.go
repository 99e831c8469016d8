//go:build unix

package ytdlp

import "syscall"

// sysProcAttr puts the child in its own process group so a termination
// signal reaches yt-dlp's helper processes too.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
