package core

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"
)

// idEncoding produces lowercase, URL-safe identifiers without padding.
var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// StableID derives the deterministic, URL-safe identifier used as the join
// key between the Full-Text Index and the Document Store (spec §3/§9).
// It is a pure function of the absolute path, so the Store can recompute
// it on every Put without an auxiliary table.
func StableID(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))

	return strings.ToLower(idEncoding.EncodeToString(sum[:]))
}
