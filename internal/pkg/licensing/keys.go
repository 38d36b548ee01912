package licensing

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// KeyPrefix marks production license keys. Keys without it are rejected
// before any remote lookup happens.
const KeyPrefix = "kf_live_"

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateKey produces a fresh license key: the production prefix plus
// 256 bits of randomness, base32-encoded.
func GenerateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("license key generation failed: %w", err)
	}
	encoded := strings.ToLower(keyEncoding.EncodeToString(b))
	return KeyPrefix + encoded, nil
}

// HasKeyFormat reports whether key looks like a production license key.
// It checks shape only; existence is a directory question.
func HasKeyFormat(key string) bool {
	return strings.HasPrefix(key, KeyPrefix) && len(key) > len(KeyPrefix)
}
