//go:build windows

package daemon

import "syscall"

// detachAttr returns the SysProcAttr that detaches the spawned daemon from
// the launching CLI process's console/process group on Windows.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x08000000 /* CREATE_NO_WINDOW */}
}
