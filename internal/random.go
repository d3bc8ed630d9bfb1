package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const accessTokenRawSize = 32

// NewCode returns a uniformly distributed string of decimal digits. Each
// digit is an independent draw from crypto/rand, so no length or modulus
// bias is possible.
func NewCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid code digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	code := b.String()
	if len(code) != digits {
		return "", fmt.Errorf("invalid code generation length")
	}
	return code, nil
}

// NewAccessToken returns an opaque credential: 32 random bytes in unpadded
// base64url. The token is the storage key; it carries no derived structure.
func NewAccessToken() (string, error) {
	var raw [accessTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// ValidateAccessToken rejects strings that cannot have been produced by
// [NewAccessToken] so malformed input never reaches the store.
func ValidateAccessToken(token string) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return err
	}
	if len(raw) != accessTokenRawSize {
		return errors.New("invalid access token size")
	}
	return nil
}
