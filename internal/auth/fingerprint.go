package auth

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a short, non-reversible tag for a token so log
// lines about the same session can be correlated without the secret.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
