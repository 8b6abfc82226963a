// Package config merges layered mcporter.json[c] files with third-party
// editor imports into a deterministic, normalized []ServerDefinition.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/mcporter/mcporter/internal/validate"
)

// CommandKind distinguishes the two ServerDefinition command variants.
type CommandKind string

const (
	CommandStdio CommandKind = "stdio"
	CommandHTTP  CommandKind = "http"
)

// Command is the tagged Stdio{command,args,cwd,env} | Http{url,headers}
// variant. Exactly one of the two shapes is populated, selected by Kind.
type Command struct {
	Kind CommandKind

	// Stdio fields.
	Command string
	Args    []string
	Cwd     string

	// Http fields.
	URL     string
	Headers map[string]string
}

// AuthKind names the currently-supported auth modes. Only "oauth" exists
// today; absent means no interactive auth.
type AuthKind string

const (
	AuthNone  AuthKind = ""
	AuthOAuth AuthKind = "oauth"
)

// SourceKind distinguishes a server's canonical origin.
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceImport SourceKind = "import"
)

// Source identifies one file that contributed a ServerDefinition.
type Source struct {
	Kind SourceKind
	Path string
}

// Lifecycle controls daemon participation.
type Lifecycle struct {
	KeepAlive bool
}

// ServerDefinition is the central normalized record produced by the config
// loader.
type ServerDefinition struct {
	Name        string `validate:"required"`
	Description string
	Command     Command
	Env         map[string]string // unresolved values, may contain ${VAR} placeholders
	Auth        AuthKind

	TokenCacheDir    string
	ClientName       string
	OAuthRedirectURL string

	Source  Source
	Sources []Source

	Lifecycle Lifecycle
}

var envKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the invariants on d. homeDir is used to compute the
// default tokenCacheDir when Auth is oauth and none was given.
func (d *ServerDefinition) Validate(homeDir string) error {
	d.Name = strings.TrimSpace(d.Name)
	if err := validate.Get().Struct(d); err != nil {
		return fmt.Errorf("server definition: %w", err)
	}

	switch d.Command.Kind {
	case CommandStdio:
		if strings.TrimSpace(d.Command.Command) == "" {
			return fmt.Errorf("server %q: stdio command must not be empty", d.Name)
		}
	case CommandHTTP:
		u, err := url.Parse(d.Command.URL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("server %q: http url %q must be an absolute URL", d.Name, d.Command.URL)
		}
	default:
		return fmt.Errorf("server %q: exactly one of stdio or http command must be set", d.Name)
	}

	for k := range d.Env {
		if !envKeyPattern.MatchString(k) {
			return fmt.Errorf("server %q: invalid env key %q", d.Name, k)
		}
	}

	if d.Auth == AuthOAuth && d.TokenCacheDir == "" {
		d.TokenCacheDir = DefaultTokenCacheDir(homeDir, d.Name)
	}

	return nil
}

// DefaultTokenCacheDir is <home>/.mcporter/<name>.
func DefaultTokenCacheDir(homeDir, name string) string {
	return homeDir + "/.mcporter/" + name
}

// ServerKey derives the OAuth-vault lookup key from the parts of a
// definition that identify the actual endpoint, so a rename that keeps the
// same endpoint reuses stored credentials.
func ServerKey(d *ServerDefinition) string {
	switch d.Command.Kind {
	case CommandHTTP:
		return "http:" + d.Command.URL
	case CommandStdio:
		return "stdio:" + d.Command.Command + ":" + strings.Join(d.Command.Args, " ")
	default:
		return "unknown:" + d.Name
	}
}
