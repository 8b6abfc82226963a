//go:build !windows

package procutil

import (
	"os"
	"strconv"
	"strings"
)

// Descendants walks /proc to find every live pid whose ancestry leads back
// to pid, so Teardown can signal a whole tree instead of just the direct
// child mcporter spawned.
func Descendants(pid int) []int {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}

	parents := make(map[int]int, len(entries))
	for _, entry := range entries {
		childPid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		ppid, ok := readPPID(childPid)
		if !ok {
			continue
		}
		parents[childPid] = ppid
	}

	var out []int
	for candidate := range parents {
		if isDescendant(candidate, pid, parents) {
			out = append(out, candidate)
		}
	}
	return out
}

func isDescendant(candidate, ancestor int, parents map[int]int) bool {
	seen := map[int]bool{}
	for current := candidate; ; {
		parent, ok := parents[current]
		if !ok || seen[current] {
			return false
		}
		if parent == ancestor {
			return true
		}
		seen[current] = true
		current = parent
	}
}

func readPPID(pid int) (int, bool) {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return 0, false
	}
	// Format: "pid (comm) state ppid ...". comm may contain spaces/parens,
	// so resume parsing after the last ')'.
	text := string(data)
	idx := strings.LastIndexByte(text, ')')
	if idx < 0 || idx+2 >= len(text) {
		return 0, false
	}
	fields := strings.Fields(text[idx+2:])
	if len(fields) < 2 {
		return 0, false
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return ppid, true
}
