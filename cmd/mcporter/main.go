// Command mcporter is the MCP client CLI: it discovers server definitions,
// connects to them over STDIO/HTTP/SSE, negotiates OAuth, and lists/calls
// their tools, either directly or through the keep-alive daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcporter/mcporter/cmd/mcporter/commands"
)

// Version is stamped at build time (-ldflags "-X main.Version=...").
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx)

	// CLI invocations force-exit after cleanup to avoid dangling stdio
	// handles (opt-out via env). os.Exit terminates immediately, never
	// waiting on any goroutine a torn-down STDIO transport left behind
	// (e.g. a child process's pipe reader). MCPORTER_NO_FORCE_EXIT lets
	// main return normally on a zero exit code instead, for callers that
	// want Go's normal runtime shutdown; a non-zero code still exits
	// through os.Exit.
	if v, ok := os.LookupEnv("MCPORTER_NO_FORCE_EXIT"); ok && v != "" && v != "0" {
		if code != 0 {
			os.Exit(code)
		}
		return
	}
	os.Exit(code)
}

func run(ctx context.Context) int {
	root := commands.Root(Version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mcporter:", err)
		return commands.ExitCode(err)
	}
	return 0
}
