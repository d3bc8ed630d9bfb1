package internal

import (
	"encoding/base64"
	"testing"
)

func TestNewCodeLengthAndCharset(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		code, err := NewCode(digits)
		if err != nil {
			t.Fatalf("NewCode(%d) failed: %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("NewCode(%d) returned %d chars", digits, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("NewCode(%d) returned non-digit %q", digits, code)
			}
		}
	}
}

func TestNewCodeRejectsInvalidLength(t *testing.T) {
	for _, digits := range []int{0, 3, 11, -1} {
		if _, err := NewCode(digits); err == nil {
			t.Fatalf("NewCode(%d) should fail", digits)
		}
	}
}

func TestNewCodeVaries(t *testing.T) {
	// 10-digit codes colliding across 8 draws would point at a broken source.
	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		code, err := NewCode(10)
		if err != nil {
			t.Fatalf("NewCode failed: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected varied codes")
	}
}

func TestNewAccessTokenShape(t *testing.T) {
	token, err := NewAccessToken()
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != accessTokenRawSize {
		t.Fatalf("expected %d raw bytes, got %d", accessTokenRawSize, len(raw))
	}

	if err := ValidateAccessToken(token); err != nil {
		t.Fatalf("generated token should validate: %v", err)
	}
}

func TestValidateAccessTokenRejectsMalformed(t *testing.T) {
	for _, token := range []string{"", "abc", "!!!!", "AAAA"} {
		if err := ValidateAccessToken(token); err == nil {
			t.Fatalf("expected %q to be rejected", token)
		}
	}
}

func TestAccessTokensAreUnique(t *testing.T) {
	a, err := NewAccessToken()
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}
	b, err := NewAccessToken()
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}
