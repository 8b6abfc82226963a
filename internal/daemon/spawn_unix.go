//go:build !windows

package daemon

import "syscall"

// detachAttr returns the SysProcAttr that puts the spawned daemon in its
// own session, so it survives the launching CLI process exiting.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
