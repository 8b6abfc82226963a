// Package pool implements the connection pool at the heart of the
// runtime. It owns a name -> ServerDefinition map and a name ->
// ClientContext cache, drives the per-transport connection state machine
// (STDIO direct-connect; HTTP streaming with SSE fallback and OAuth
// auto-promotion), and tears STDIO servers down through the process-tree
// escalation in internal/procutil.
package pool

import (
	"context"
	"net/http"
	"os/exec"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/classify"
	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/oauthvault"
	"github.com/mcporter/mcporter/internal/transport"
)

const clientName = "mcporter"

// ClientVersion is embedded in the mcp.Implementation every connection
// advertises to the server it talks to.
var ClientVersion = "dev"

// DefaultMaxOAuthAttempts is the default for ConnectOptions.MaxOAuthAttempts.
const DefaultMaxOAuthAttempts = 3

// ConnectOptions parameterizes one connect call.
type ConnectOptions struct {
	// MaxOAuthAttempts caps interactive OAuth retries during this connect.
	// nil means DefaultMaxOAuthAttempts; a pointer to 0 disables OAuth
	// entirely, distinguishing "unset" from "explicitly off".
	MaxOAuthAttempts *int
	SkipCache        bool
}

func (o ConnectOptions) maxOAuthAttempts() int {
	if o.MaxOAuthAttempts == nil {
		return DefaultMaxOAuthAttempts
	}
	return *o.MaxOAuthAttempts
}

// IntPtr is a small helper for building a ConnectOptions.MaxOAuthAttempts
// value, since Go has no inline pointer-to-literal syntax.
func IntPtr(n int) *int { return &n }

// ClientContext is the cached, live connection to one server. Calls
// against the same entry are serialized by Mu.
type ClientContext struct {
	Mu sync.Mutex

	Client  *mcp.Client
	Session *mcp.ClientSession
	Def     *config.ServerDefinition

	cmd *exec.Cmd // set only for STDIO connections
}

// Pool implements the connection pool.
type Pool struct {
	ctx     *app.Context
	homeDir string
	vault   *oauthvault.Vault

	// httpClient backs OAuth discovery/registration/token-exchange requests,
	// kept separate from the per-server MCP transport's HTTP client.
	httpClient *http.Client

	mu           sync.Mutex
	definitions  map[string]*config.ServerDefinition
	clients      map[string]*ClientContext
	connectLocks map[string]*sync.Mutex
	promoted     map[string]bool
}

// New builds a Pool seeded with defs, already normalized by the config
// loader.
func New(ctx *app.Context, homeDir string, defs []config.ServerDefinition) *Pool {
	p := &Pool{
		ctx:          ctx,
		homeDir:      homeDir,
		vault:        oauthvault.New(ctx, homeDir),
		httpClient:   &http.Client{},
		definitions:  make(map[string]*config.ServerDefinition, len(defs)),
		clients:      make(map[string]*ClientContext),
		connectLocks: make(map[string]*sync.Mutex),
		promoted:     make(map[string]bool),
	}
	for i := range defs {
		def := defs[i]
		p.definitions[def.Name] = &def
	}
	return p
}

// RegisterDefinition adds or replaces a server definition. Used by
// ad hoc server registration to inject ephemeral servers.
func (p *Pool) RegisterDefinition(def config.ServerDefinition, overwrite bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.definitions[def.Name]; exists && !overwrite {
		return &AlreadyRegisteredError{Name: def.Name}
	}
	p.definitions[def.Name] = &def
	delete(p.clients, def.Name) // a redefined server must reconnect fresh
	return nil
}

// Definition returns the currently registered definition for name, or false
// if none exists.
func (p *Pool) Definition(name string) (config.ServerDefinition, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	def, ok := p.definitions[name]
	if !ok {
		return config.ServerDefinition{}, false
	}
	return *def, true
}

// Connected reports whether name currently has a cached, live connection.
// Used by the keep-alive daemon's status method.
func (p *Pool) Connected(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.clients[name]
	return ok
}

// Names returns every registered server name, in no particular order.
func (p *Pool) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.definitions))
	for name := range p.definitions {
		out = append(out, name)
	}
	return out
}

func (p *Pool) connectLock(name string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.connectLocks[name]
	if !ok {
		l = &sync.Mutex{}
		p.connectLocks[name] = l
	}
	return l
}

// Connect resolves name to a live ClientContext. When the cache holds an
// entry and opts.SkipCache is false, it is returned immediately; otherwise
// the connection state machine runs.
func (p *Pool) Connect(ctx context.Context, name string, opts ConnectOptions) (*ClientContext, error) {
	p.mu.Lock()
	_, known := p.definitions[name]
	p.mu.Unlock()
	if !known {
		return nil, &UnknownServerError{Name: name}
	}

	lock := p.connectLock(name)
	lock.Lock()
	defer lock.Unlock()

	if !opts.SkipCache {
		p.mu.Lock()
		entry, ok := p.clients[name]
		p.mu.Unlock()
		if ok {
			return entry, nil
		}
	}

	p.mu.Lock()
	def := p.definitions[name]
	p.mu.Unlock()

	entry, err := p.establish(ctx, def, opts)
	if err != nil {
		// a failed connection never leaves a cached entry behind.
		p.mu.Lock()
		delete(p.clients, name)
		p.mu.Unlock()
		return nil, err
	}

	if !opts.SkipCache {
		p.mu.Lock()
		p.clients[name] = entry
		p.mu.Unlock()
	}
	return entry, nil
}

func (p *Pool) establish(ctx context.Context, def *config.ServerDefinition, opts ConnectOptions) (*ClientContext, error) {
	switch def.Command.Kind {
	case config.CommandStdio:
		return p.establishStdio(ctx, def)
	case config.CommandHTTP:
		return p.establishHTTP(ctx, def, opts)
	default:
		return nil, &UnknownServerError{Name: def.Name}
	}
}

func (p *Pool) establishStdio(ctx context.Context, def *config.ServerDefinition) (*ClientContext, error) {
	resolvedEnv := config.ResolveEnvMap(p.ctx.Env, def.Env)
	built, err := transport.BuildStdio(def, resolvedEnv)
	if err != nil {
		return nil, err
	}

	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: ClientVersion}, nil)
	session, err := client.Connect(ctx, built.Transport, nil)
	if err != nil {
		return nil, err
	}

	return &ClientContext{Client: client, Session: session, Def: def, cmd: built.Cmd}, nil
}

// newMCPSession builds a fresh mcp.Client and connects it over built, for
// the HTTP establish path (establishStdio builds its own client).
func newMCPSession(ctx context.Context, built *transport.Built) (*mcp.Client, *mcp.ClientSession, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: ClientVersion}, nil)
	session, err := client.Connect(ctx, built.Transport, nil)
	if err != nil {
		return nil, nil, err
	}
	return client, session, nil
}

// classifyAuth reports whether err looks like an authorization failure.
func classifyAuth(err error) bool {
	return classify.Classify(err).Kind == classify.KindAuth
}
