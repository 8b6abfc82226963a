package oauthvault

import (
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/config"
)

// Vault is the OAuth credential store.
type Vault struct {
	ctx     *app.Context
	homeDir string
}

func New(ctx *app.Context, homeDir string) *Vault {
	return &Vault{ctx: ctx, homeDir: homeDir}
}

func (v *Vault) vaultPath() string {
	return filepath.Join(v.homeDir, ".mcporter", vaultFileName)
}

func (v *Vault) legacyDir(def *config.ServerDefinition) string {
	return filepath.Join(v.homeDir, ".mcporter", def.Name)
}

// resolve returns the merged entry for def, checking the explicit token
// cache directory, then the consolidated vault, then the legacy
// per-server directory, migrating a legacy-only hit into the consolidated
// vault (and the explicit cache dir, when distinct) as it goes.
func (v *Vault) resolve(def *config.ServerDefinition) entry {
	key := config.ServerKey(def)

	if def.TokenCacheDir != "" {
		if e := readEntryDir(def.TokenCacheDir); !e.isEmpty() {
			// The default tokenCacheDir is the legacy directory itself, so a
			// hit here may be legacy-only data the vault has never seen.
			if def.TokenCacheDir == v.legacyDir(def) && readVault(v.vaultPath(), key).isEmpty() {
				v.ctx.Logger.Infof("mcporter: migrating legacy OAuth credentials for %q into the vault", def.Name)
				_ = writeVault(v.vaultPath(), key, e)
			}
			return e
		}
	}

	if e := readVault(v.vaultPath(), key); !e.isEmpty() {
		return e
	}

	legacy := v.legacyDir(def)
	if legacy == def.TokenCacheDir {
		return entry{}
	}
	e := readEntryDir(legacy)
	if e.isEmpty() {
		return entry{}
	}

	v.ctx.Logger.Infof("mcporter: migrating legacy OAuth credentials for %q into the vault", def.Name)
	_ = writeVault(v.vaultPath(), key, e)
	if def.TokenCacheDir != "" {
		_ = writeEntryDir(def.TokenCacheDir, e)
	}
	return e
}

// locations returns the distinct per-directory cache paths applicable to
// def: the explicit tokenCacheDir (always set for oauth servers once
// ServerDefinition.Validate has run) and the legacy directory, deduplicated
// when they coincide (the common case, since the default tokenCacheDir and
// the legacy directory are the same path).
func (v *Vault) locations(def *config.ServerDefinition) []string {
	legacy := v.legacyDir(def)
	if def.TokenCacheDir == "" || def.TokenCacheDir == legacy {
		return []string{legacy}
	}
	return []string{def.TokenCacheDir, legacy}
}

func (v *Vault) save(def *config.ServerDefinition, e entry) error {
	key := config.ServerKey(def)
	if err := writeVault(v.vaultPath(), key, e); err != nil {
		return err
	}
	for _, dir := range v.locations(def) {
		if err := writeEntryDir(dir, e); err != nil {
			return err
		}
	}
	return nil
}

// ReadTokens returns the stored token set for def, or nil if absent.
func (v *Vault) ReadTokens(def *config.ServerDefinition) (*oauth2.Token, error) {
	return v.resolve(def).Tokens, nil
}

// SaveTokens persists tok to every applicable location.
func (v *Vault) SaveTokens(def *config.ServerDefinition, tok *oauth2.Token) error {
	return v.save(def, entry{Tokens: tok})
}

// ReadClientCredentials returns the stored DCR registration for def, or nil
// if absent.
func (v *Vault) ReadClientCredentials(def *config.ServerDefinition) (*ClientCredentials, error) {
	return v.resolve(def).Client, nil
}

func (v *Vault) SaveClientCredentials(def *config.ServerDefinition, creds *ClientCredentials) error {
	return v.save(def, entry{Client: creds})
}

// ReadCodeVerifier returns the stored PKCE verifier for def, or "" if absent.
func (v *Vault) ReadCodeVerifier(def *config.ServerDefinition) (string, error) {
	return v.resolve(def).CodeVerifier, nil
}

func (v *Vault) SaveCodeVerifier(def *config.ServerDefinition, verifier string) error {
	return v.save(def, entry{CodeVerifier: verifier})
}

// Clear removes the given scope's files from every applicable location.
func (v *Vault) Clear(def *config.ServerDefinition, scope Scope) error {
	key := config.ServerKey(def)
	if err := clearVault(v.vaultPath(), key, scope); err != nil {
		return err
	}
	for _, dir := range v.locations(def) {
		if err := clearEntryDir(dir, scope); err != nil {
			return err
		}
	}
	return nil
}
