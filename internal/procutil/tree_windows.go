//go:build windows

package procutil

// Descendants is a no-op on Windows: process-tree enumeration isn't
// implemented there, so Teardown falls back to signaling the direct child
// process only.
func Descendants(pid int) []int {
	return nil
}
