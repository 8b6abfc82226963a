package oauthsession

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/mcporter/mcporter/internal/app"
)

const defaultOAuthTimeout = 60 * time.Second

// pendingResult is what the redirect handler delivers to the one in-flight
// waitForAuthorizationCode call.
type pendingResult struct {
	code string
	err  error
}

// Session is one in-progress interactive authorization: it owns a loopback
// HTTP listener, the PKCE/state values for this attempt, and the
// OAuthClientProvider capability the Transport Factory wires into the MCP
// client.
type Session struct {
	ctx        *app.Context
	serverName string
	clientName string

	listener net.Listener
	server   *http.Server

	redirectPath string
	redirectURL  string

	mu       sync.Mutex
	state    string
	verifier string
	closed   bool
	pending  chan pendingResult

	clientMetadata ClientMetadata
}

// New binds a loopback listener and starts serving the redirect handler.
// oauthRedirectURL, when non-empty, pins a fixed host:port/path (some
// authorization servers require a pre-registered redirect URI); otherwise
// an ephemeral port and the path "/callback" are used.
func New(ctx *app.Context, serverName, clientName, oauthRedirectURL string) (*Session, error) {
	host := "127.0.0.1"
	port := 0
	path := "/callback"

	if oauthRedirectURL != "" {
		parsed, err := url.Parse(oauthRedirectURL)
		if err != nil {
			return nil, fmt.Errorf("oauth session for %q: invalid oauthRedirectUrl: %w", serverName, err)
		}
		if h := parsed.Hostname(); h != "" {
			host = h
		}
		if p := parsed.Port(); p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				port = n
			}
		}
		if parsed.Path != "" {
			path = parsed.Path
		}
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("oauth session for %q: binding loopback listener: %w", serverName, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port
	redirectURL := fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(actualPort)), path)

	s := &Session{
		ctx:          ctx,
		serverName:   serverName,
		clientName:   clientName,
		listener:     listener,
		redirectPath: path,
		redirectURL:  redirectURL,
		pending:      make(chan pendingResult, 1),
	}
	s.clientMetadata = BuildClientMetadata(clientName, serverName, redirectURL)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRedirect)
	s.server = &http.Server{Handler: mux}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			ctx.Logger.Warnf("mcporter: oauth callback server for %q exited: %v", serverName, err)
		}
	}()

	return s, nil
}

// RedirectURL is the URL to advertise to the authorization server.
func (s *Session) RedirectURL() string { return s.redirectURL }

// ClientMetadata is the DCR document for this session.
func (s *Session) ClientMetadata() ClientMetadata { return s.clientMetadata }

// State returns the stored OAuth state, generating and persisting one on
// first call.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		s.state = GenerateState()
	}
	return s.state
}

// CodeVerifier returns the PKCE verifier for this session, generating and
// persisting one on first call.
func (s *Session) CodeVerifier() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verifier == "" {
		v, err := GenerateCodeVerifier()
		if err != nil {
			return "", err
		}
		s.verifier = v
	}
	return s.verifier, nil
}

// SaveCodeVerifier overrides the verifier (used when the caller generates
// it up front so the challenge and the stored value always match).
func (s *Session) SaveCodeVerifier(verifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = verifier
}

// LaunchBrowser makes a best-effort attempt to open authURL; on failure it
// only logs, it never returns an error the caller must handle.
func (s *Session) LaunchBrowser(authURL string) {
	if err := openBrowser(authURL); err != nil {
		s.ctx.Logger.Infof("mcporter: open this URL to authorize %q: %s", s.serverName, authURL)
	}
}

func (s *Session) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.redirectPath {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()

	if state := query.Get("state"); state != "" && state != s.State() {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		s.deliver(pendingResult{err: &InvalidStateError{ServerName: s.serverName}})
		return
	}

	if oauthErr := query.Get("error"); oauthErr != "" {
		writeFailurePage(w)
		s.deliver(pendingResult{err: &OAuthProviderError{
			ServerName:  s.serverName,
			Code:        oauthErr,
			Description: query.Get("error_description"),
		}})
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		s.deliver(pendingResult{err: &MissingAuthorizationCodeError{ServerName: s.serverName}})
		return
	}

	writeSuccessPage(w)
	s.deliver(pendingResult{code: code})
}

func (s *Session) deliver(result pendingResult) {
	select {
	case s.pending <- result:
	default:
	}
}

// WaitForAuthorizationCode races the redirect against timeout (default 60s,
// overridden by MCPORTER_OAUTH_TIMEOUT_MS).
func (s *Session) WaitForAuthorizationCode(ctx context.Context) (string, error) {
	timeout := s.ctx.DurationEnv("MCPORTER_OAUTH_TIMEOUT_MS", defaultOAuthTimeout)

	select {
	case result := <-s.pending:
		return result.code, result.err
	case <-time.After(timeout):
		return "", &OAuthTimeoutError{ServerName: s.serverName, Timeout: timeout}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the HTTP listener and rejects any pending waiter. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.deliver(pendingResult{err: &SessionClosedError{ServerName: s.serverName}})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func writeSuccessPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html><html><body><h1>Authorization successful</h1><p>You can close this window.</p></body></html>`)
}

func writeFailurePage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprint(w, `<!DOCTYPE html><html><body><h1>Authorization failed</h1><p>You can close this window and retry.</p></body></html>`)
}
