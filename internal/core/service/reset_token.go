package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const rawResetTokenBytes = 32

// NewResetToken returns the raw token destined for the emailed link and the
// digest persisted in its place. The raw token never touches storage.
func NewResetToken() (raw, digest string, err error) {
	b := make([]byte, rawResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	raw = hex.EncodeToString(b)
	return raw, HashResetToken(raw), nil
}

// HashResetToken computes the one-way digest of a raw reset token. It is
// deterministic: issuance and consume-lookup must produce the same digest.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
