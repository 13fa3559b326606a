package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// flowTokenBytes gives 32 base64 characters of entropy, matching the
// length of the tokens the confirmation and recovery mails carry.
const flowTokenBytes = 24

// NewFlowToken generates a URL-safe random token for the confirmation
// and password recovery flows. These are single-use lookup keys, not
// signed session tokens.
func NewFlowToken() string {
	b := make([]byte, flowTokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic("auth: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
