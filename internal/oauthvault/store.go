package oauthvault

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

// lockTimeout bounds how long a write waits for the file lock.
const lockTimeout = 5 * time.Second

// withFileLock runs fn while holding an flock-based lock on lockPath,
// creating the lock file's parent directory if necessary. The lock file
// itself persists on disk afterward.
func withFileLock(lockPath string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return err
	}
	fileLock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return err
	}
	if !locked {
		return context.DeadlineExceeded
	}
	defer fileLock.Unlock()

	return fn()
}

// readEntryDir reads the three per-directory files into an entry. A missing
// directory, missing file, or corrupt/empty file is never an error: the
// corresponding field is simply left nil/empty.
func readEntryDir(dir string) entry {
	var e entry

	if data, err := os.ReadFile(filepath.Join(dir, tokensFileName)); err == nil {
		var tok oauth2.Token
		if json.Unmarshal(data, &tok) == nil && tok.AccessToken != "" {
			e.Tokens = &tok
		}
	}
	if data, err := os.ReadFile(filepath.Join(dir, clientFileName)); err == nil {
		var c ClientCredentials
		if json.Unmarshal(data, &c) == nil && c.ClientID != "" {
			e.Client = &c
		}
	}
	if data, err := os.ReadFile(filepath.Join(dir, verifierFileName)); err == nil {
		if v := string(data); v != "" {
			e.CodeVerifier = v
		}
	}

	return e
}

// writeEntryDir writes the non-nil fields of e into dir, under a file lock.
// Fields left nil/empty in e are not touched (use clearEntryDir to remove).
func writeEntryDir(dir string, e entry) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	lockPath := filepath.Join(dir, ".lock")
	return withFileLock(lockPath, func() error {
		if e.Tokens != nil {
			data, err := json.MarshalIndent(e.Tokens, "", " ")
			if err != nil {
				return err
			}
			if err := atomicWriteFile(filepath.Join(dir, tokensFileName), data); err != nil {
				return err
			}
		}
		if e.Client != nil {
			data, err := json.MarshalIndent(e.Client, "", " ")
			if err != nil {
				return err
			}
			if err := atomicWriteFile(filepath.Join(dir, clientFileName), data); err != nil {
				return err
			}
		}
		if e.CodeVerifier != "" {
			if err := atomicWriteFile(filepath.Join(dir, verifierFileName), []byte(e.CodeVerifier)); err != nil {
				return err
			}
		}
		return nil
	})
}

func clearEntryDir(dir string, scope Scope) error {
	lockPath := filepath.Join(dir, ".lock")
	return withFileLock(lockPath, func() error {
		var names []string
		switch scope {
		case ScopeTokens:
			names = []string{tokensFileName}
		case ScopeClient:
			names = []string{clientFileName}
		case ScopeVerifier:
			names = []string{verifierFileName}
		default:
			names = []string{tokensFileName, clientFileName, verifierFileName}
		}
		for _, name := range names {
			if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		return nil
	})
}

func atomicWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readVault reads the consolidated vault file's entry for key, absent on
// any parse or read error.
func readVault(vaultPath, key string) entry {
	data, err := os.ReadFile(vaultPath)
	if err != nil {
		return entry{}
	}
	var all map[string]entry
	if json.Unmarshal(data, &all) != nil {
		return entry{}
	}
	return all[key]
}

// writeVault merges e into the consolidated vault's entry for key under a
// file lock, preserving every other server's entry untouched.
func writeVault(vaultPath, key string, e entry) error {
	if err := os.MkdirAll(filepath.Dir(vaultPath), 0o700); err != nil {
		return err
	}
	lockPath := vaultPath + ".lock"
	return withFileLock(lockPath, func() error {
		all := map[string]entry{}
		if data, err := os.ReadFile(vaultPath); err == nil {
			_ = json.Unmarshal(data, &all) // corrupt vault is treated as empty, not fatal
		}

		merged := all[key]
		if e.Tokens != nil {
			merged.Tokens = e.Tokens
		}
		if e.Client != nil {
			merged.Client = e.Client
		}
		if e.CodeVerifier != "" {
			merged.CodeVerifier = e.CodeVerifier
		}
		all[key] = merged

		data, err := json.MarshalIndent(all, "", " ")
		if err != nil {
			return err
		}
		return atomicWriteFile(vaultPath, data)
	})
}

func clearVault(vaultPath, key string, scope Scope) error {
	lockPath := vaultPath + ".lock"
	return withFileLock(lockPath, func() error {
		all := map[string]entry{}
		if data, err := os.ReadFile(vaultPath); err == nil {
			_ = json.Unmarshal(data, &all)
		}
		e, ok := all[key]
		if !ok {
			return nil
		}
		switch scope {
		case ScopeTokens:
			e.Tokens = nil
		case ScopeClient:
			e.Client = nil
		case ScopeVerifier:
			e.CodeVerifier = ""
		default:
			e = entry{}
		}
		if e.isEmpty() {
			delete(all, key)
		} else {
			all[key] = e
		}
		data, err := json.MarshalIndent(all, "", " ")
		if err != nil {
			return err
		}
		return atomicWriteFile(vaultPath, data)
	})
}
