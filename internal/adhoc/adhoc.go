// Package adhoc turns a bare `--http-url`/`--stdio` invocation into an
// ephemeral ServerDefinition, registered directly into the Pool without
// ever touching a config file, unless `--persist` asks for it.
package adhoc

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mcporter/mcporter/internal/config"
)

// Options collects the adhoc registration flags.
type Options struct {
	HTTPURL     string
	AllowHTTP   bool
	StdioCmd    string
	StdioArgs   []string
	Env         map[string]string
	Cwd         string
	Name        string
	Description string
}

// InsecureHTTPError is returned when --http-url names a plain-http URL
// without --allow-http.
type InsecureHTTPError struct {
	URL string
}

func (e *InsecureHTTPError) Error() string {
	return fmt.Sprintf("refusing to register insecure http:// URL %q without --allow-http", e.URL)
}

// NoCommandOrURLError is returned when neither --http-url nor --stdio was
// given.
type NoCommandOrURLError struct{}

func (e *NoCommandOrURLError) Error() string {
	return "adhoc registration needs one of --http-url or --stdio"
}

// Registerer is the subset of *pool.Pool this package depends on, so the
// package can be unit-tested without spinning up a real Pool.
type Registerer interface {
	RegisterDefinition(def config.ServerDefinition, overwrite bool) error
}

// Register injects def into p, overwriting any existing registration
// under the same name.
func Register(p Registerer, def config.ServerDefinition) error {
	return p.RegisterDefinition(def, true)
}

// Build derives the ephemeral ServerDefinition for opts. existing is
// consulted so a bare URL matching an already-registered definition's URL
// reuses that definition's name instead of minting a new ephemeral one.
func Build(opts Options, existing []config.ServerDefinition) (config.ServerDefinition, error) {
	switch {
	case opts.HTTPURL != "":
		return buildHTTP(opts, existing)
	case opts.StdioCmd != "":
		return buildStdio(opts), nil
	default:
		return config.ServerDefinition{}, &NoCommandOrURLError{}
	}
}

func buildHTTP(opts Options, existing []config.ServerDefinition) (config.ServerDefinition, error) {
	u, err := url.Parse(opts.HTTPURL)
	if err != nil || !u.IsAbs() {
		return config.ServerDefinition{}, fmt.Errorf("adhoc: %q is not an absolute URL", opts.HTTPURL)
	}
	if u.Scheme == "http" && !opts.AllowHTTP {
		return config.ServerDefinition{}, &InsecureHTTPError{URL: opts.HTTPURL}
	}

	name := opts.Name
	if name == "" {
		if matched, ok := matchExistingURL(existing, u); ok {
			name = matched
		} else {
			name = deriveNameFromURL(u)
		}
	}

	return config.ServerDefinition{
		Name:        name,
		Description: opts.Description,
		Command:     config.Command{Kind: config.CommandHTTP, URL: opts.HTTPURL},
		Env:         opts.Env,
		Source:      config.Source{Kind: config.SourceLocal, Path: "<adhoc>"},
	}, nil
}

func buildStdio(opts Options) config.ServerDefinition {
	name := opts.Name
	if name == "" {
		name = deriveNameFromCommand(opts.StdioCmd)
	}
	return config.ServerDefinition{
		Name:        name,
		Description: opts.Description,
		Command: config.Command{
			Kind:    config.CommandStdio,
			Command: opts.StdioCmd,
			Args:    opts.StdioArgs,
			Cwd:     opts.Cwd,
		},
		Env:    opts.Env,
		Source: config.Source{Kind: config.SourceLocal, Path: "<adhoc>"},
	}
}

// matchExistingURL reports whether u (hostname+path, exact) matches an
// already-registered HTTP definition's URL, in which case the existing
// name is reused.
func matchExistingURL(existing []config.ServerDefinition, u *url.URL) (string, bool) {
	for _, def := range existing {
		if def.Command.Kind != config.CommandHTTP {
			continue
		}
		other, err := url.Parse(def.Command.URL)
		if err != nil {
			continue
		}
		if strings.EqualFold(other.Hostname(), u.Hostname()) && other.Path == u.Path {
			return def.Name, true
		}
	}
	return "", false
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// deriveNameFromURL sanitizes host+path into a server name, e.g.
// "mcp.example.com/mcp" -> "mcp-example-com-mcp".
func deriveNameFromURL(u *url.URL) string {
	raw := strings.ToLower(u.Hostname() + "-" + strings.Trim(u.Path, "/"))
	name := nonAlnum.ReplaceAllString(raw, "-")
	return strings.Trim(name, "-")
}

func deriveNameFromCommand(cmd string) string {
	base := filepath.Base(cmd)
	name := nonAlnum.ReplaceAllString(strings.ToLower(base), "-")
	return strings.Trim(name, "-")
}
