package adhoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcporter/mcporter/internal/config"
)

// nativeFile mirrors the on-disk root shape from internal/config/loader.go:
// a flat map of server name to the permissive rawEntry JSON object.
type nativeFile struct {
	MCPServers map[string]map[string]any `json:"mcpServers"`
}

// Confirm asks the caller whether to proceed with an append to path; it is
// skipped entirely when --yes is set.
type Confirm func(path string) bool

// Persist appends def into the mcpServers map of the config file at path,
// prompting for confirmation unless yes is set. The file is read
// tolerantly (JSONC, possibly absent) and rewritten atomically via
// temp+rename, matching the rest of the repo's persisted-state idiom.
func Persist(path string, def config.ServerDefinition, yes bool, confirm Confirm) error {
	if !yes && confirm != nil && !confirm(path) {
		return fmt.Errorf("adhoc: persist to %s cancelled", path)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("adhoc: reading %s: %w", path, err)
	}

	var nf nativeFile
	if len(data) > 0 {
		if err := config.ParseTolerantJSON(data, &nf); err != nil {
			return fmt.Errorf("adhoc: parsing %s: %w", path, err)
		}
	}
	if nf.MCPServers == nil {
		nf.MCPServers = map[string]map[string]any{}
	}
	nf.MCPServers[def.Name] = toRawEntry(def)

	return writeAtomic(path, nf)
}

// toRawEntry converts def into the permissive on-disk shape that
// internal/config's normalizeRawEntry reads back.
func toRawEntry(def config.ServerDefinition) map[string]any {
	entry := map[string]any{}
	if def.Description != "" {
		entry["description"] = def.Description
	}
	if len(def.Env) > 0 {
		entry["env"] = def.Env
	}
	if def.Lifecycle.KeepAlive {
		entry["lifecycle"] = map[string]any{"keepAlive": true}
	}

	switch def.Command.Kind {
	case config.CommandHTTP:
		entry["url"] = def.Command.URL
		if len(def.Command.Headers) > 0 {
			entry["headers"] = def.Command.Headers
		}
	case config.CommandStdio:
		argv := append([]string{def.Command.Command}, def.Command.Args...)
		entry["command"] = argv
		if def.Command.Cwd != "" {
			entry["cwd"] = def.Command.Cwd
		}
	}
	return entry
}

func writeAtomic(path string, nf nativeFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("adhoc: creating directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(nf, "", " ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("adhoc: writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
