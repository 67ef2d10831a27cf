package signing

import "strings"

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. Unlike url.Values it keeps
// insertion order, which is part of what gets signed.
type Params []Param

// Add appends a parameter.
func (p *Params) Add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

// Get returns the first value for key, or "".
func (p Params) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Encode serializes the parameters as application/x-www-form-urlencoded in
// their current order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		formEscape(&b, kv.Key)
		b.WriteByte('=')
		formEscape(&b, kv.Value)
	}
	return b.String()
}

const hexUpper = "0123456789ABCDEF"

func formEscape(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlnum(c) || c == '*' || c == '-' || c == '.' || c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(hexUpper[c>>4])
			b.WriteByte(hexUpper[c&0xf])
		}
	}
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
