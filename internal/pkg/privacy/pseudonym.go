// Package privacy turns participant identifiers (USNs, staff login codes,
// account ids) into stable pseudonyms before they leave the core through
// logs or the audit event stream.
package privacy

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const pseudonymBytes = 12

type Pseudonymizer struct {
	key []byte
}

// NewPseudonymizer keys the hash so pseudonyms cannot be reversed with a
// dictionary of roll numbers. blake2b accepts keys up to 64 bytes.
func NewPseudonymizer(key string) *Pseudonymizer {
	k := []byte(key)
	if len(k) > blake2b.Size {
		k = k[:blake2b.Size]
	}
	return &Pseudonymizer{key: k}
}

func (p *Pseudonymizer) Mask(id string) string {
	if id == "" {
		return ""
	}
	h, err := blake2b.New(pseudonymBytes, p.key)
	if err != nil {
		// Only reachable with an oversized key, which the constructor prevents.
		return "anon"
	}
	h.Write([]byte(id))
	return "anon-" + hex.EncodeToString(h.Sum(nil))
}
