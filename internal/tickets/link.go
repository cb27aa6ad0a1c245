package tickets

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// LinkSigner guards public ticket downloads. With an empty secret every
// serial is downloadable without a token.
type LinkSigner struct {
	secret []byte
}

func NewLinkSigner(secret string) *LinkSigner {
	return &LinkSigner{secret: []byte(secret)}
}

func (s *LinkSigner) Enabled() bool {
	return len(s.secret) > 0
}

func (s *LinkSigner) Token(serial string) string {
	if !s.Enabled() {
		return ""
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(serial))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *LinkSigner) Valid(serial, token string) bool {
	if !s.Enabled() {
		return true
	}
	if token == "" {
		return false
	}
	return hmac.Equal([]byte(s.Token(serial)), []byte(token))
}
