package config

import "github.com/google/shlex"

// SplitCommand splits a string-form "command" field into argv, honoring
// single quotes, double quotes and backslash escaping —
// ("command may be a string ... or an array"). Array-form commands never
// call this; it exists solely for the string form.
func SplitCommand(s string) ([]string, error) {
	return shlex.Split(s)
}
