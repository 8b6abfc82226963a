package transport

import (
	"github.com/mcporter/mcporter/internal/config"
)

// ResolveHeaders resolves def's HTTP headers via the Env Resolver, wrapping
// any failure as HeaderResolutionFailedError so construction aborts with
// the error shape names.
func ResolveHeaders(lookup config.Lookup, def *config.ServerDefinition) (map[string]string, error) {
	resolved, badKey, err := config.ResolveHeaders(lookup, def.Command.Headers)
	if err != nil {
		return nil, &HeaderResolutionFailedError{ServerName: def.Name, Key: badKey, Err: err}
	}
	return resolved, nil
}
