// Package procutil implements process-tree teardown escalation for stdio
// servers: wait for a graceful exit, then SIGTERM the whole tree, then
// SIGKILL it.
package procutil

import (
	"os"
	"syscall"
	"time"
)

// Result reports the outcome of a Teardown call.
type Result struct {
	Exited   bool
	Survived []int
}

// Teardown waits up to graceWait for proc to exit on its own (the caller is
// expected to have already asked the transport to close). If it hasn't,
// every pid in proc's process tree is sent SIGTERM and given termWait; if
// that also fails, SIGKILL and killWait. Whatever is still alive after that
// is returned as Survived for the caller to log.
func Teardown(proc *os.Process, graceWait, termWait, killWait time.Duration) Result {
	if proc == nil {
		return Result{Exited: true}
	}

	done := make(chan struct{})
	go func() {
		_, _ = proc.Wait()
		close(done)
	}()

	pids := append([]int{proc.Pid}, Descendants(proc.Pid)...)

	if waitOrTimeout(done, graceWait) {
		return Result{Exited: true}
	}

	signalAll(pids, syscall.SIGTERM)
	if waitOrTimeout(done, termWait) {
		return Result{Exited: true}
	}

	signalAll(pids, syscall.SIGKILL)
	if waitOrTimeout(done, killWait) {
		return Result{Exited: true}
	}

	return Result{Exited: false, Survived: pids}
}

func waitOrTimeout(done <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func signalAll(pids []int, sig syscall.Signal) {
	for _, pid := range pids {
		proc, err := os.FindProcess(pid)
		if err != nil {
			continue
		}
		_ = proc.Signal(sig)
	}
}
