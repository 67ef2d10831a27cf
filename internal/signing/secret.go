package signing

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidSecret is returned for secrets that are not valid UTF-8.
var ErrInvalidSecret = errors.New("consumer key is not valid UTF-8")

// EscapeSecret percent-encodes a consumer key with encodeURI rules. The result
// is the HMAC key; other implementations of the API sign with the same escaped
// form, so secrets with spaces or non-ASCII characters still verify.
func EscapeSecret(secret string) (string, error) {
	if !utf8.ValidString(secret) {
		return "", ErrInvalidSecret
	}

	var b strings.Builder
	for i := 0; i < len(secret); i++ {
		c := secret[i]
		if isAlnum(c) || strings.IndexByte(uriUnescaped, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexUpper[c>>4])
		b.WriteByte(hexUpper[c&0xf])
	}
	return b.String(), nil
}

// Reserved and mark characters that encodeURI leaves alone.
const uriUnescaped = ";,/?:@&=+$-_.!~*'()#"
