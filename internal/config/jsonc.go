package config

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tailscale/hujson"
)

// ParseTolerantJSON parses JSON that may carry `//` and `/* */` comments and
// trailing commas (JSONC, permitted in the home config), and tolerates
// empty/whitespace-only input by returning nil without touching out.
func ParseTolerantJSON(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.UseNumber()
	return dec.Decode(out)
}

// IsBlank reports whether s contains nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
