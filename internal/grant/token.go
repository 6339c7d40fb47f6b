package grant

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/url"
	"strings"
)

const (
	DefaultTokenBytes       = 24
	DefaultVerifyCodeLength = 6
)

// NewToken returns an unguessable opaque token. Tokens are append-only:
// once issued a value is never reused, even for revoked or expired grants.
func NewToken(numBytes int) (string, error) {
	if numBytes <= 0 {
		numBytes = DefaultTokenBytes
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewVerifyCode returns a fixed-length numeric second factor. Uniqueness is
// best-effort per grant, not globally enforced.
func NewVerifyCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultVerifyCodeLength
	}
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate verify code: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// ScanURL wraps a token in the client-presentable URL that gets rendered
// into the scannable credential.
func ScanURL(baseURL, token string) string {
	return fmt.Sprintf("%s/scan?token=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(token))
}
