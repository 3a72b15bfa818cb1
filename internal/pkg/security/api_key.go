// Package security generates credential material.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// API keys are prefixed so leaked keys are recognizable in scans and logs.
const apiKeyPrefix = "spk_"

// GenerateAPIKey mints a new photographer API key. The plain key is returned
// exactly once; only its hash is ever stored.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
