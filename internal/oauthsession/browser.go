package oauthsession

import (
	"os/exec"
	"runtime"
)

// openBrowser makes a best-effort attempt to open url in the user's default
// browser. Callers should log the URL for manual navigation on error,
// never treat it as fatal.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", ""}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, url)

	return exec.Command(cmd, args...).Start()
}
