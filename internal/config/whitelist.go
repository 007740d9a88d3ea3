package config

import "strings"

// Whitelist restricts which service short codes are eligible for
// registration on the flag/environment path. An unset whitelist allows
// every code; a configured one matches exact, case-sensitive elements of
// the comma-split list. No wildcards.
type Whitelist struct {
	codes []string
}

// ParseWhitelist builds a Whitelist from the raw comma-separated flag or
// environment value. The empty string means "no whitelist configured".
func ParseWhitelist(raw string) Whitelist {
	if raw == "" {
		return Whitelist{}
	}
	return Whitelist{codes: strings.Split(raw, ",")}
}

// Allowed reports whether the short code may be registered.
func (w Whitelist) Allowed(code string) bool {
	if w.codes == nil {
		return true
	}
	for _, c := range w.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Restricted reports whether a whitelist was configured at all.
func (w Whitelist) Restricted() bool { return w.codes != nil }

func (w Whitelist) String() string { return strings.Join(w.codes, ",") }
