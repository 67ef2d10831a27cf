package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// HeaderSignature carries the base64 HMAC-SHA256 of the canonical string.
const HeaderSignature = "Signature"

// Signer signs canonical strings with one partner's consumer key. It holds no
// mutable state and is safe for concurrent use.
type Signer struct {
	key []byte
}

// NewSigner escapes consumerKey and keeps it as the HMAC key.
func NewSigner(consumerKey string) (*Signer, error) {
	if consumerKey == "" {
		return nil, errors.New("consumer key required")
	}
	escaped, err := EscapeSecret(consumerKey)
	if err != nil {
		return nil, err
	}
	return &Signer{key: []byte(escaped)}, nil
}

// Sign returns the base64 HMAC-SHA256 of canonical.
func (s *Signer) Sign(canonical string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches canonical, in constant time.
func (s *Signer) Verify(canonical, signature string) bool {
	return hmac.Equal([]byte(s.Sign(canonical)), []byte(signature))
}

// SignRequest canonicalizes an encoded body, path and encoded query and signs
// the result. It returns the signature and the canonical string it covers.
func (s *Signer) SignRequest(body []byte, path, query string) (signature, canonical string, err error) {
	canonical, err = CanonicalizeJSON(body, path, query)
	if err != nil {
		return "", "", err
	}
	return s.Sign(canonical), canonical, nil
}
