// Package id generates the prefixed identifiers used for every stored entity.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	PrefixUser         = "usr"
	PrefixSession      = "sess"
	PrefixInfluencer   = "inf"
	PrefixOrder        = "ord"
	PrefixWallet       = "wal"
	PrefixTransaction  = "txn"
	PrefixMessage      = "msg"
	PrefixNotification = "ntf"
)

// Generate returns "prefix-<nanoid>". The nanoid part is 21 URL-safe characters.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics when the system has no entropy.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// HasPrefix reports whether v was generated with prefix.
func HasPrefix(v, prefix string) bool {
	return strings.HasPrefix(v, prefix+"-") && len(v) > len(prefix)+1
}
