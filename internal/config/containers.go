package config

// containerNames is the fixed list of container keys recognized across the
// native format and most imports, checked in this order with "first
// non-empty wins".
var containerNames = []string{"mcpServers", "servers", "mcp"}

// reservedTopLevelKeys are never treated as server names during legacy
// root-level fallback.
var reservedTopLevelKeys = map[string]bool{
	"mcpServers": true,
	"servers":    true,
	"mcp":        true,
	"imports":    true,
	"version":    true,
}

// extractContainer finds the first non-empty container among names in root,
// or — when allowRootFallback is set and none are present — treats every
// remaining top-level key whose value is an object as a name->entry pair
// (the legacy .claude.json shape).
func extractContainer(root map[string]any, names []string, allowRootFallback bool) map[string]rawEntry {
	for _, name := range names {
		if container, ok := root[name].(map[string]any); ok && len(container) > 0 {
			return toRawEntries(container)
		}
	}

	if !allowRootFallback {
		return nil
	}

	out := map[string]rawEntry{}
	for key, value := range root {
		if reservedTopLevelKeys[key] {
			continue
		}
		if entry, ok := value.(map[string]any); ok {
			out[key] = rawEntry(entry)
		}
	}
	return out
}

func toRawEntries(container map[string]any) map[string]rawEntry {
	out := make(map[string]rawEntry, len(container))
	for name, value := range container {
		if entry, ok := value.(map[string]any); ok {
			out[name] = rawEntry(entry)
		}
	}
	return out
}
