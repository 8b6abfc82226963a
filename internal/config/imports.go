package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ImportKind is one of the supported third-party editor ecosystems,
type ImportKind string

const (
	ImportCursor        ImportKind = "cursor"
	ImportClaudeCode    ImportKind = "claude-code"
	ImportClaudeDesktop ImportKind = "claude-desktop"
	ImportCodex         ImportKind = "codex"
	ImportOpencode      ImportKind = "opencode"
)

// AllImportKinds is every recognized import kind. A layer applies only the
// kinds its "imports" list names; this list is what `config import` checks
// its argument against.
var AllImportKinds = []ImportKind{ImportCursor, ImportClaudeCode, ImportClaudeDesktop, ImportCodex, ImportOpencode}

// importCandidatePaths returns every file this import kind might live in,
// project-scoped first then user-scoped. Not every path need exist; the
// loader silently skips the ones that don't.
func importCandidatePaths(kind ImportKind, home, root string) []string {
	switch kind {
	case ImportCursor:
		return []string{
			filepath.Join(root, ".cursor", "mcp.json"),
			filepath.Join(home, ".cursor", "mcp.json"),
		}
	case ImportClaudeCode:
		return []string{
			filepath.Join(root, ".claude", "settings.json"),
			filepath.Join(home, ".claude", "settings.json"),
		}
	case ImportClaudeDesktop:
		paths := []string{filepath.Join(home, ".claude.json")}
		switch runtime.GOOS {
		case "darwin":
			paths = append(paths, filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json"))
		case "windows":
			paths = append(paths, filepath.Join(home, "AppData", "Roaming", "Claude", "claude_desktop_config.json"))
		default:
			paths = append(paths, filepath.Join(home, ".config", "Claude", "claude_desktop_config.json"))
		}
		return paths
	case ImportCodex:
		return []string{
			filepath.Join(root, ".codex", "config.toml"),
			filepath.Join(home, ".codex", "config.toml"),
		}
	case ImportOpencode:
		return []string{
			filepath.Join(root, "opencode.json"),
			filepath.Join(home, ".config", "opencode", "config.json"),
		}
	default:
		return nil
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
