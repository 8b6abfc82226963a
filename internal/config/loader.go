package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mcporter/mcporter/internal/app"
)

// ConfigMalformedError wraps a parse failure for an *explicit* config path.
// Implicit (default-location) paths degrade gracefully instead of
// returning this error.
type ConfigMalformedError struct {
	Path string
	Err  error
}

func (e *ConfigMalformedError) Error() string {
	return fmt.Sprintf("config %s is malformed: %v", e.Path, e.Err)
}

func (e *ConfigMalformedError) Unwrap() error { return e.Err }

// LoadOptions parameterizes one Load call.
type LoadOptions struct {
	ConfigPath string // explicit path, or MCPORTER_CONFIG if empty
	RootDir    string // project root; defaults to "."
	HomeDir    string // defaults to os.UserHomeDir
}

// Loader implements the Config Loader component.
type Loader struct {
	ctx *app.Context
}

func NewLoader(ctx *app.Context) *Loader {
	return &Loader{ctx: ctx}
}

type nativeFile struct {
	MCPServers map[string]rawEntry `json:"mcpServers"`
	Imports    []ImportKind        `json:"imports"`
}

func (l *Loader) readNativeFile(path string) (*nativeFile, error) {
	if !fileExists(path) {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file nativeFile
	if err := ParseTolerantJSON(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// occurrence is one (definition, origin) pair seen while merging layers, in
// the chronological order they were applied.
type occurrence struct {
	def ServerDefinition
	src Source
}

type mergeState struct {
	order       []string // first-seen name order, for deterministic output
	occurrences map[string][]occurrence
}

func newMergeState() *mergeState {
	return &mergeState{occurrences: map[string][]occurrence{}}
}

func (m *mergeState) apply(name string, def ServerDefinition, src Source) {
	if _, seen := m.occurrences[name]; !seen {
		m.order = append(m.order, name)
	}
	m.occurrences[name] = append(m.occurrences[name], occurrence{def: def, src: src})
}

// Load resolves the full set of ServerDefinitions visible from the home
// config, the project config, and every enabled import, merging later
// layers over earlier ones by name.
func (l *Loader) Load(opts LoadOptions) ([]ServerDefinition, error) {
	home := opts.HomeDir
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	root := opts.RootDir
	if root == "" {
		root = "."
	}

	explicitPath := opts.ConfigPath
	if explicitPath == "" {
		explicitPath = l.ctx.Env.Getenv("MCPORTER_CONFIG")
	}

	state := newMergeState()

	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			return nil, &ConfigMalformedError{Path: explicitPath, Err: err}
		}
		var file nativeFile
		if err := ParseTolerantJSON(data, &file); err != nil {
			return nil, &ConfigMalformedError{Path: explicitPath, Err: err}
		}
		l.applyImports(state, file.Imports, home, root, SourceLocal, explicitPath)
		l.applyNative(state, file.MCPServers, explicitPath)
	} else {
		homePath := l.homeConfigPath(home)
		projectPath := filepath.Join(root, "config", "mcporter.json")

		for _, layerPath := range []string{homePath, projectPath} {
			file, err := l.readNativeFile(layerPath)
			if err != nil {
				l.ctx.WarnOnce("native:"+layerPath, "mcporter: ignoring malformed config %s: %v", layerPath, err)
				continue
			}
			if file == nil {
				continue
			}
			l.applyImports(state, file.Imports, home, root, SourceLocal, layerPath)
			l.applyNative(state, file.MCPServers, layerPath)
		}
	}

	return finalize(state, home)
}

func (l *Loader) homeConfigPath(home string) string {
	jsonPath := filepath.Join(home, ".mcporter", "mcporter.json")
	if fileExists(jsonPath) {
		return jsonPath
	}
	return filepath.Join(home, ".mcporter", "mcporter.jsonc")
}

func (l *Loader) applyNative(state *mergeState, entries map[string]rawEntry, path string) {
	for _, name := range sortedKeys(entries) {
		def, ok, err := normalizeRawEntry(name, entries[name])
		if err != nil {
			l.ctx.WarnOnce("entry:"+path+":"+name, "mcporter: ignoring server %q in %s: %v", name, path, err)
			continue
		}
		if !ok {
			l.ctx.WarnOnce("entry:"+path+":"+name, "mcporter: ignoring server %q in %s: no command or url", name, path)
			continue
		}
		state.apply(name, def, Source{Kind: SourceLocal, Path: path})
	}
}

func (l *Loader) applyImports(state *mergeState, imports []ImportKind, home, root string, _ SourceKind, _ string) {
	for _, kind := range imports {
		for _, candidate := range importCandidatePaths(kind, home, root) {
			entries, found, err := readImportFile(l.ctx, kind, candidate)
			if err != nil || !found {
				continue
			}
			for _, name := range sortedKeys(entries) {
				def, ok, err := normalizeRawEntry(name, entries[name])
				if err != nil {
					l.ctx.WarnOnce("entry:"+candidate+":"+name, "mcporter: ignoring server %q in %s import %s: %v", name, kind, candidate, err)
					continue
				}
				if !ok {
					continue
				}
				state.apply(name, def, Source{Kind: SourceImport, Path: candidate})
			}
		}
	}
}

func sortedKeys(m map[string]rawEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// finalize turns the chronological per-name occurrence lists into the
// deterministic, ordered []ServerDefinition the loader returns: the
// winning (last-applied) occurrence's fields win, but Sources carries
// every occurrence with the winner first.
func finalize(state *mergeState, home string) ([]ServerDefinition, error) {
	out := make([]ServerDefinition, 0, len(state.order))
	for _, name := range state.order {
		occs := state.occurrences[name]
		winner := occs[len(occs)-1]

		def := winner.def
		def.Source = winner.src
		def.Sources = make([]Source, 0, len(occs))
		def.Sources = append(def.Sources, winner.src)
		for _, o := range occs[:len(occs)-1] {
			def.Sources = append(def.Sources, o.src)
		}

		if err := def.Validate(home); err != nil {
			continue // invalid entries are dropped, not fatal for the whole load
		}
		out = append(out, def)
	}
	return out, nil
}
