package config

import (
	"fmt"
	"regexp"
)

// placeholderPattern matches both ${NAME} and $env:NAME forms in a single,
// non-recursive pass.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$env:([A-Za-z_][A-Za-z0-9_]*)`)

// EnvUnresolvedError is returned when resolving a header value references a
// variable that is absent from the process environment.
type EnvUnresolvedError struct {
	Key string
}

func (e *EnvUnresolvedError) Error() string {
	return fmt.Sprintf("env resolver: %q is not set", e.Key)
}

// Lookup is the narrow environment-lookup capability the resolver depends
// on, satisfied by app.Env.
type Lookup interface {
	LookupEnv(key string) (string, bool)
}

// ResolveHeaderValue substitutes placeholders in a header value. A missing
// variable is a hard error, because a header silently becoming "Bearer " is
// a worse failure mode than refusing to connect.
func ResolveHeaderValue(lookup Lookup, value string) (string, error) {
	var firstErr error
	resolved := placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderName(match)
		v, ok := lookup.LookupEnv(name)
		if !ok {
			firstErr = &EnvUnresolvedError{Key: name}
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return resolved, nil
}

// ResolveHeaders resolves every header value, stopping at the first error
// and reporting which key it came from (HeaderResolutionFailed at the
// Transport Factory layer wraps this further with the server name).
func ResolveHeaders(lookup Lookup, headers map[string]string) (map[string]string, string, error) {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		resolved, err := ResolveHeaderValue(lookup, v)
		if err != nil {
			return nil, k, err
		}
		out[k] = resolved
	}
	return out, "", nil
}

// ResolveEnvValue substitutes placeholders in an env map value. A missing
// variable resolves to ""; the caller is expected to then filter the entry
// out via EnvResolvedOK.
func ResolveEnvValue(lookup Lookup, value string) (resolved string, ok bool) {
	missing := false
	out := placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := placeholderName(match)
		v, found := lookup.LookupEnv(name)
		if !found {
			missing = true
			return ""
		}
		return v
	})
	return out, !missing
}

// ResolveEnvMap resolves every value in an env map, dropping entries whose
// placeholder could not be resolved.
func ResolveEnvMap(lookup Lookup, env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		if resolved, ok := ResolveEnvValue(lookup, v); ok {
			out[k] = resolved
		}
	}
	return out
}

func placeholderName(match string) string {
	sub := placeholderPattern.FindStringSubmatch(match)
	if sub == nil {
		return ""
	}
	if sub[1] != "" {
		return sub[1]
	}
	return sub[2]
}
