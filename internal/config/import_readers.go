package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/mcporter/mcporter/internal/app"
)

// readImportFile loads one candidate file for an import kind and returns
// its recognized container as name->rawEntry, or (nil, false, nil) if the
// file doesn't exist. Malformed files are ignored with a one-time warning,
// never a hard error: implicit paths degrade gracefully.
func readImportFile(ctx *app.Context, kind ImportKind, path string) (map[string]rawEntry, bool, error) {
	if !fileExists(path) {
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		ctx.WarnOnce("import:"+path, "mcporter: could not read %s import %s: %v", kind, path, err)
		return nil, false, nil
	}

	if kind == ImportCodex {
		entries, err := readCodexContainer(data)
		if err != nil {
			ctx.WarnOnce("import:"+path, "mcporter: ignoring malformed %s config %s: %v", kind, path, err)
			return nil, false, nil
		}
		return entries, true, nil
	}

	var root map[string]any
	if err := ParseTolerantJSON(data, &root); err != nil {
		ctx.WarnOnce("import:"+path, "mcporter: ignoring malformed %s config %s: %v", kind, path, err)
		return nil, false, nil
	}
	if root == nil {
		return nil, false, nil
	}

	switch kind {
	case ImportClaudeCode:
		return extractContainer(root, containerNames, false), true, nil
	case ImportOpencode:
		return extractContainer(root, []string{"mcp"}, false), true, nil
	case ImportClaudeDesktop:
		allowRoot := filepath.Base(path) == ".claude.json"
		return extractContainer(root, containerNames, allowRoot), true, nil
	default: // cursor and anything else using the generic shape
		return extractContainer(root, containerNames, false), true, nil
	}
}

// readCodexContainer parses the codex TOML config's mcp_servers table.
func readCodexContainer(data []byte) (map[string]rawEntry, error) {
	var root map[string]any
	if len(data) == 0 {
		return nil, nil
	}
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing codex config.toml: %w", err)
	}

	table, ok := root["mcp_servers"].(map[string]any)
	if !ok {
		return nil, nil
	}
	return toRawEntries(table), nil
}
