package config

import (
	"fmt"
)

// rawEntry is the permissive on-disk shape of one mcpServers entry. Extra
// fields are tolerated (ignored) by decoding into map[string]any first and
// reading out only the recognized aliases.
type rawEntry map[string]any

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func firstString(raw rawEntry, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := asString(v); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := asString(e); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}

func stringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		switch t := val.(type) {
		case string:
			out[k] = t
		default:
			out[k] = fmt.Sprintf("%v", t)
		}
	}
	return out
}

// normalizeRawEntry converts one rawEntry into a ServerDefinition. ok is
// false when neither a URL nor a command could be found, meaning the entry
// is rejected.
func normalizeRawEntry(name string, raw rawEntry) (ServerDefinition, bool, error) {
	def := ServerDefinition{Name: name}

	if desc, ok := firstString(raw, "description"); ok {
		def.Description = desc
	}
	if cn, ok := firstString(raw, "clientName"); ok {
		def.ClientName = cn
	}
	if ru, ok := firstString(raw, "oauthRedirectUrl"); ok {
		def.OAuthRedirectURL = ru
	}
	if tcd, ok := firstString(raw, "tokenCacheDir"); ok {
		def.TokenCacheDir = tcd
	}
	if authRaw, ok := firstString(raw, "auth"); ok && authRaw == string(AuthOAuth) {
		def.Auth = AuthOAuth
	}

	if lifecycle, ok := raw["lifecycle"].(map[string]any); ok {
		if keepAlive, ok := lifecycle["keepAlive"].(bool); ok {
			def.Lifecycle.KeepAlive = keepAlive
		}
	}

	def.Env = map[string]string{}
	if envRaw, ok := raw["env"]; ok {
		for k, v := range stringMap(envRaw) {
			def.Env[k] = v
		}
	}

	headers := map[string]string{}
	if h, ok := raw["headers"]; ok {
		for k, v := range stringMap(h) {
			headers[k] = v
		}
	}
	if token, ok := firstString(raw, "bearerToken"); ok {
		headers["Authorization"] = "Bearer " + token
	} else if tokenEnv, ok := firstString(raw, "bearerTokenEnv"); ok {
		headers["Authorization"] = "Bearer ${" + tokenEnv + "}"
	}

	if urlValue, ok := firstString(raw, "baseUrl", "base_url", "url", "serverUrl", "server_url"); ok {
		def.Command = Command{Kind: CommandHTTP, URL: urlValue, Headers: headers}
		return def, true, nil
	}

	if cmdRaw, ok := raw["command"]; ok {
		var argv []string
		switch t := cmdRaw.(type) {
		case string:
			split, err := SplitCommand(t)
			if err != nil {
				return ServerDefinition{}, false, fmt.Errorf("server %q: invalid command string: %w", name, err)
			}
			argv = split
		case []any, []string:
			argv = stringSlice(t)
		}
		if len(argv) == 0 {
			return ServerDefinition{}, false, nil
		}

		args := stringSlice(raw["args"])
		cwd, _ := firstString(raw, "cwd")

		def.Command = Command{
			Kind:    CommandStdio,
			Command: argv[0],
			Args:    append(append([]string{}, argv[1:]...), args...),
			Cwd:     cwd,
		}
		return def, true, nil
	}

	return ServerDefinition{}, false, nil
}
