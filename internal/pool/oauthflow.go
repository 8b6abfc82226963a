package pool

import (
	"context"

	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/oauthdiscovery"
	"github.com/mcporter/mcporter/internal/oauthsession"
	"github.com/mcporter/mcporter/internal/oauthvault"
	"github.com/mcporter/mcporter/internal/transport"
)

// establishHTTP runs the HTTP connection state machine: one outer
// iteration per OAuth auto-promotion, each of which tries the streaming
// transport then falls back to SSE.
func (p *Pool) establishHTTP(ctx context.Context, def *config.ServerDefinition, opts ConnectOptions) (*ClientContext, error) {
	maxAttempts := opts.maxOAuthAttempts()
	current := def
	promotedHere := false

	for {
		entry, err := p.connectStreamingThenSSE(ctx, current, maxAttempts)
		if err == nil {
			return entry, nil
		}

		if _, isTimeout := err.(*oauthsession.OAuthTimeoutError); isTimeout {
			return nil, err
		}

		if classifyAuth(err) && current.Auth != config.AuthOAuth && !promotedHere && maxAttempts > 0 {
			current = p.promote(current)
			promotedHere = true
			continue
		}
		return nil, err
	}
}

// connectStreamingThenSSE tries the preferred streaming transport first,
// then the SSE fallback on any non-auth-timeout failure.
func (p *Pool) connectStreamingThenSSE(ctx context.Context, def *config.ServerDefinition, maxAttempts int) (*ClientContext, error) {
	streamBuild := func(headers map[string]string) (*transport.Built, error) {
		return transport.BuildStreaming(def, headers)
	}
	entry, err := p.connectWithAuth(ctx, def, streamBuild, maxAttempts)
	if err == nil {
		return entry, nil
	}
	if _, isTimeout := err.(*oauthsession.OAuthTimeoutError); isTimeout {
		return nil, err
	}

	p.ctx.Logger.Infof("mcporter: %q streaming connect failed (%v), falling back to SSE", def.Name, err)

	sseBuild := func(headers map[string]string) (*transport.Built, error) {
		return transport.BuildSSE(def, headers)
	}
	return p.connectWithAuth(ctx, def, sseBuild, maxAttempts)
}

// connectWithAuth attempts the connection; on Unauthorized with OAuth
// available, it runs one interactive authorization round and retries, up
// to maxAttempts times.
func (p *Pool) connectWithAuth(
	ctx context.Context,
	def *config.ServerDefinition,
	build func(headers map[string]string) (*transport.Built, error),
	maxAttempts int,
) (*ClientContext, error) {
	var session *oauthsession.Session
	defer func() {
		if session != nil {
			_ = session.Close()
		}
	}()

	headers := map[string]string{}
	if def.Auth == config.AuthOAuth {
		if tok, _ := p.vault.ReadTokens(def); tok != nil && tok.AccessToken != "" {
			headers["Authorization"] = "Bearer " + tok.AccessToken
		}
	}

	attempt := 0
	for {
		resolved, err := transport.ResolveHeaders(p.ctx.Env, def)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			resolved[k] = v
		}

		built, err := build(resolved)
		if err != nil {
			return nil, err
		}

		client, mcpSession, err := newMCPSession(ctx, built)
		if err == nil {
			return &ClientContext{Client: client, Session: mcpSession, Def: def}, nil
		}

		if !classifyAuth(err) || def.Auth != config.AuthOAuth || maxAttempts <= 0 {
			return nil, err
		}
		attempt++
		if attempt > maxAttempts {
			return nil, err
		}

		if session == nil {
			session, err = oauthsession.New(p.ctx, def.Name, def.ClientName, def.OAuthRedirectURL)
			if err != nil {
				return nil, err
			}
		}

		token, authErr := p.authorize(ctx, def, session)
		if authErr != nil {
			return nil, authErr
		}
		headers["Authorization"] = "Bearer " + token
	}
}

// authorize runs one full interactive authorization round for def: OAuth
// discovery, Dynamic Client Registration (if no credentials are cached
// yet), browser handoff, the redirect wait, and the authorization-code
// exchange. The resulting tokens are persisted through the vault before
// being handed back for the retrying connect attempt.
func (p *Pool) authorize(ctx context.Context, def *config.ServerDefinition, session *oauthsession.Session) (string, error) {
	disc, err := oauthdiscovery.Discover(ctx, p.httpClient, def.Command.URL)
	if err != nil {
		return "", err
	}

	creds, err := p.vault.ReadClientCredentials(def)
	if err != nil {
		return "", err
	}
	if creds == nil {
		creds, err = oauthdiscovery.Register(ctx, p.httpClient, disc, session.ClientMetadata())
		if err != nil {
			return "", err
		}
		if err := p.vault.SaveClientCredentials(def, creds); err != nil {
			return "", err
		}
	}

	authURL, err := session.BuildAuthorizationURL(disc, creds.ClientID)
	if err != nil {
		return "", err
	}
	session.LaunchBrowser(authURL)

	code, err := session.WaitForAuthorizationCode(ctx)
	if err != nil {
		return "", err
	}

	verifier, err := session.CodeVerifier()
	if err != nil {
		return "", err
	}

	tok, err := oauthdiscovery.ExchangeCode(ctx, p.httpClient, disc, creds.ClientID, code, session.RedirectURL(), verifier)
	if err != nil {
		return "", err
	}
	if err := p.vault.SaveTokens(def, tok); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// promote upgrades def to auth=oauth in place within the Pool's
// definitions map: a one-shot promotion per server per process lifetime.
// The returned pointer is the new, promoted definition; callers should use
// it for the remainder of the current connect attempt.
func (p *Pool) promote(def *config.ServerDefinition) *config.ServerDefinition {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.promoted[def.Name] {
		if existing, ok := p.definitions[def.Name]; ok {
			return existing
		}
	}

	promoted := *def
	promoted.Auth = config.AuthOAuth
	if promoted.TokenCacheDir == "" {
		promoted.TokenCacheDir = config.DefaultTokenCacheDir(p.homeDir, def.Name)
	}
	p.definitions[def.Name] = &promoted
	p.promoted[def.Name] = true
	p.ctx.Logger.Infof("mcporter: auto-promoting %q to OAuth after an unauthorized response", def.Name)
	return &promoted
}

// clearVaultOnInvalidate removes stored credentials for def per scope, used
// by the auth CLI surface's invalidateCredentials capability.
func (p *Pool) clearVaultOnInvalidate(def *config.ServerDefinition, scope oauthvault.Scope) error {
	return p.vault.Clear(def, scope)
}
