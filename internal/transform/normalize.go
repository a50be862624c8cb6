package transform

import (
	"regexp"
	"strings"
)

var (
	nonWordRE  = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spaceRunRE = regexp.MustCompile(`\s+`)
)

// NormalizeKey maps a raw header name to a snake_case key: trim, lowercase,
// drop every character that is not a letter, digit, underscore, or
// whitespace, then collapse each whitespace run to a single underscore.
// The function is idempotent.
func NormalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = nonWordRE.ReplaceAllString(k, "")
	return spaceRunRE.ReplaceAllString(k, "_")
}

// KeyMapper resolves header names for one file, applying NormalizeKey when
// enabled and caching the result so each distinct header is normalized once.
// Collisions after normalization are not detected; downstream document
// construction resolves them last-write-wins.
type KeyMapper struct {
	normalize bool
	cache     map[string]string
}

// NewKeyMapper returns a KeyMapper. With normalize=false it is the identity.
func NewKeyMapper(normalize bool) *KeyMapper {
	return &KeyMapper{normalize: normalize, cache: make(map[string]string)}
}

// Map returns the key to use for the raw header name k.
func (m *KeyMapper) Map(k string) string {
	if !m.normalize {
		return k
	}
	if v, ok := m.cache[k]; ok {
		return v
	}
	v := NormalizeKey(k)
	m.cache[k] = v
	return v
}
