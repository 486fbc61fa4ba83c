package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// CSRF derives per-user anti-forgery tokens from a server secret.
type CSRF struct {
	secret []byte
}

func NewCSRF(secret []byte) *CSRF {
	return &CSRF{secret: append([]byte(nil), secret...)}
}

// Token returns the token the user must echo on mutating requests.
func (c *CSRF) Token(userID uint) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte("aiwriter-csrf:" + strconv.FormatUint(uint64(userID), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Valid reports whether token belongs to the user.
func (c *CSRF) Valid(userID uint, token string) bool {
	want, err := hex.DecodeString(c.Token(userID))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}
