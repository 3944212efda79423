package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// PublicFingerprint identifies handles built without any credential material.
const PublicFingerprint = "public"

// Credentials is the per-request credential set for authenticated venue calls.
type Credentials struct {
	APIKey     string `json:"api_key,omitempty"`
	Secret     string `json:"secret,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
	Sandbox    bool   `json:"sandbox,omitempty"`
}

// HasKeys reports whether both an API key and a secret are present.
func (c Credentials) HasKeys() bool {
	return c.APIKey != "" && c.Secret != ""
}

// IsEmpty reports whether no credential material was supplied at all.
func (c Credentials) IsEmpty() bool {
	return c.APIKey == "" && c.Secret == "" && c.Passphrase == ""
}

// Fingerprint returns a stable identity for the credential set.
// Secrets are hashed so the fingerprint can be used as a map key or logged.
func (c Credentials) Fingerprint() string {
	if c.IsEmpty() {
		if c.Sandbox {
			return PublicFingerprint + "+sandbox"
		}
		return PublicFingerprint
	}

	h := sha256.New()
	for _, part := range []string{c.APIKey, c.Secret, c.Passphrase} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if c.Sandbox {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
