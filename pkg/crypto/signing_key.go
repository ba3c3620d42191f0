package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// MinSigningKeyBytes is the minimum HMAC key size (256 bits).
const MinSigningKeyBytes = 32

var (
	ErrSigningKeyMissing  = errors.New("signing key is not configured")
	ErrSigningKeyTooShort = errors.New("signing key is shorter than 256 bits")
)

// DecodeSigningKey decodes base64 key material (standard or URL alphabet, padded or not)
// and enforces the minimum key size.
func DecodeSigningKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrSigningKeyMissing
	}

	var (
		key []byte
		err error
	)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		key, err = enc.DecodeString(encoded)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing key from base64: %w", err)
	}

	if len(key) < MinSigningKeyBytes {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrSigningKeyTooShort, len(key), MinSigningKeyBytes)
	}
	return key, nil
}
