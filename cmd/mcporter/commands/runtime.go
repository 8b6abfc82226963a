package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/classify"
	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/mcplog"
	"github.com/mcporter/mcporter/internal/oauthsession"
	"github.com/mcporter/mcporter/internal/pool"
	"github.com/mcporter/mcporter/internal/timeoututil"
)

// globalFlags is bound once on the root command and read by every leaf
// RunE: --config, --root, --log-level, --oauth-timeout, --json.
type globalFlags struct {
	configPath   string
	rootDir      string
	logLevel     string
	oauthTimeout int64
	jsonOutput   bool
}

var flags globalFlags

func registerGlobalFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVar(&flags.configPath, "config", "", "Path to mcporter.json[c] (overrides MCPORTER_CONFIG)")
	f.StringVar(&flags.rootDir, "root", "", "Project root directory to resolve config/mcporter.json against")
	defaultLogLevel := "info"
	if v := os.Getenv("MCPORTER_LOG_LEVEL"); v != "" {
		defaultLogLevel = v
	}
	f.StringVar(&flags.logLevel, "log-level", defaultLogLevel, "Log level: debug, info, warn, error (overrides MCPORTER_LOG_LEVEL)")
	f.Int64Var(&flags.oauthTimeout, "oauth-timeout", 0, "OAuth authorization wait timeout in milliseconds (overrides MCPORTER_OAUTH_TIMEOUT_MS)")
	f.BoolVar(&flags.jsonOutput, "json", false, "Emit machine-readable JSON envelopes instead of text")
}

// runtime bundles the App context, loaded definitions, and Pool every
// command needs, built once per invocation from the global flags.
type runtime struct {
	actx       *app.Context
	pool       *pool.Pool
	homeDir    string
	configPath string // absolute, resolved explicit-or-default config path; identifies the daemon
}

func newRuntime() (*runtime, error) {
	logger := mcplog.New(mcplog.ParseLevel(flags.logLevel))
	actx := app.New(logger)

	if flags.oauthTimeout > 0 {
		// Threaded through as an env override so internal/oauthsession's
		// own MCPORTER_OAUTH_TIMEOUT_MS read picks it up without a
		// second code path.
		os.Setenv("MCPORTER_OAUTH_TIMEOUT_MS", fmt.Sprintf("%d", flags.oauthTimeout))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	loader := config.NewLoader(actx)
	defs, err := loader.Load(config.LoadOptions{
		ConfigPath: flags.configPath,
		RootDir:    flags.rootDir,
		HomeDir:    homeDir,
	})
	if err != nil {
		return nil, err
	}

	resolvedConfigPath := flags.configPath
	if resolvedConfigPath == "" {
		if v, ok := actx.Env.LookupEnv("MCPORTER_CONFIG"); ok && v != "" {
			resolvedConfigPath = v
		} else {
			resolvedConfigPath = filepath.Join(homeDir, ".mcporter", "mcporter.json")
		}
	}
	absConfigPath, err := filepath.Abs(resolvedConfigPath)
	if err != nil {
		absConfigPath = resolvedConfigPath
	}

	return &runtime{
		actx:       actx,
		pool:       pool.New(actx, homeDir, defs),
		homeDir:    homeDir,
		configPath: absConfigPath,
	}, nil
}

// listTimeout/callTimeout resolve per-operation timeout defaults, each
// overridable by its own environment variable.
func (r *runtime) listTimeout() int64 {
	return r.actx.DurationEnv("MCPORTER_LIST_TIMEOUT", timeoututil.DefaultListTimeout).Milliseconds()
}

func (r *runtime) callTimeout() int64 {
	return r.actx.DurationEnv("MCPORTER_CALL_TIMEOUT", timeoututil.DefaultCallTimeout).Milliseconds()
}

// envelope is the machine-readable error shape: errors become
// {status, issue:{kind, statusCode?}, server, authCommand?, error}.
type envelope struct {
	Status      string          `json:"status"`
	Issue       *classify.Issue `json:"issue,omitempty"`
	Server      string          `json:"server,omitempty"`
	AuthCommand string          `json:"authCommand,omitempty"`
	Error       string          `json:"error"`
}

func newEnvelope(server string, err error) envelope {
	env := envelope{Status: "error", Server: server, Error: err.Error()}
	issue := classify.Classify(err)
	if issue.Kind != classify.KindUnknown {
		env.Issue = &issue
		env.Status = string(issue.Kind)
		if issue.Kind == classify.KindAuth && server != "" {
			env.AuthCommand = fmt.Sprintf("mcporter auth login %s", server)
		}
	}
	return env
}

// ExitCode maps an error to its exit code: 0 success (handled by the
// caller directly), 1 user/usage error, 2 transport/auth error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch err.(type) {
	case *pool.UnknownServerError, *pool.AlreadyRegisteredError:
		return 1
	case *oauthsession.OAuthTimeoutError, *oauthsession.InvalidStateError,
		*oauthsession.MissingAuthorizationCodeError, *oauthsession.OAuthProviderError,
		*oauthsession.SessionClosedError:
		return 2
	case *timeoututil.TimeoutError:
		return 2
	}
	issue := classify.Classify(err)
	if issue.Kind != classify.KindUnknown {
		return 2
	}
	return 1
}

// withTimeout is the uniform timeout wrapper every command-level call goes
// through.
func withTimeout[T any](parent context.Context, op string, ms int64, fn func(context.Context) (T, error)) (T, error) {
	return timeoututil.Call(parent, op, time.Duration(ms)*time.Millisecond, fn)
}
