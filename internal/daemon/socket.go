package daemon

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mcporter/mcporter/internal/app"
)

// Addr is the pair of paths identifying one daemon instance: the socket
// (or named pipe name on Windows) it listens on, and the metadata sidecar
// file at the same prefix.
type Addr struct {
	SocketPath string
	MetaPath   string
}

// hash12 is the first 12 hex characters of the SHA-256 of s.
func hash12(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ResolveAddr computes the socket/metadata paths for the daemon serving
// absConfigPath: "<runtime-dir>/mcporter/<hash12(absConfigPath)>.sock".
func ResolveAddr(ctx *app.Context, absConfigPath string) Addr {
	dir := runtimeDir(ctx)
	base := filepath.Join(dir, "mcporter", hash12(absConfigPath))
	if runtime.GOOS == "windows" {
		// Named pipes live in their own namespace, not the filesystem; the
		// pipe name below is what Listen/Dial use, and the filesystem base
		// path only locates the metadata sidecar.
		return Addr{SocketPath: `\\.\pipe\mcporter-` + hash12(absConfigPath), MetaPath: base + ".json"}
	}
	return Addr{SocketPath: base + ".sock", MetaPath: base + ".json"}
}

// runtimeDir resolves the OS-appropriate runtime directory ($XDG_RUNTIME_DIR
// or a platform fallback), overridable via MCPORTER_DAEMON_DIR.
func runtimeDir(ctx *app.Context) string {
	if v, ok := ctx.Env.LookupEnv("MCPORTER_DAEMON_DIR"); ok && v != "" {
		return v
	}
	if v, ok := ctx.Env.LookupEnv("XDG_RUNTIME_DIR"); ok && v != "" {
		return v
	}
	if runtime.GOOS == "windows" {
		if v, ok := ctx.Env.LookupEnv("LOCALAPPDATA"); ok && v != "" {
			return v
		}
	}
	return filepath.Join(os.TempDir(), "mcporter-runtime")
}
