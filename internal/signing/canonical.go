package signing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Canonicalize returns the canonical signing string for a request whose body is
// the JSON encoding of body. A nil body signs as null content.
func Canonicalize(body any, path, query string) (string, error) {
	if body == nil {
		return CanonicalizeJSON(nil, path, query)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal body: %w", err)
	}
	return CanonicalizeJSON(raw, path, query)
}

// CanonicalizeJSON is Canonicalize for a body that is already encoded. An empty
// or all-whitespace body signs as null content.
func CanonicalizeJSON(body []byte, path, query string) (string, error) {
	content, err := decodeTree(body)
	if err != nil {
		return "", err
	}

	obj := map[string]any{
		"content": content,
		"path":    path,
		"query":   query,
	}

	rank := keyOrder(obj)

	var b strings.Builder
	if err := writeValue(&b, obj, rank); err != nil {
		return "", err
	}
	return b.String(), nil
}

func decodeTree(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	d := &decoder{data: body}
	v, err := d.value()
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	d.skipSpace()
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("failed to decode body: trailing data after JSON value")
	}
	return v, nil
}

// keyOrder collects every key name in v and returns each name's position in
// the single sorted order used for all objects.
func keyOrder(v any) map[string]int {
	set := make(map[string]struct{})
	collectKeys(v, set)

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	rank := make(map[string]int, len(keys))
	for i, k := range keys {
		rank[k] = i
	}
	return rank
}

func collectKeys(v any, set map[string]struct{}) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			set[k] = struct{}{}
			collectKeys(child, set)
		}
	case []any:
		for _, child := range t {
			collectKeys(child, set)
		}
	}
}

// compareUTF16 orders strings by UTF-16 code units. This differs from byte
// order for characters above U+FFFF against U+E000..U+FFFF.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16Units(a), utf16Units(b))
}

func writeValue(b *strings.Builder, v any, rank map[string]int) error {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case string:
		writeString(b, t)
	case json.Number:
		n, err := formatNumber(t)
		if err != nil {
			return err
		}
		b.WriteString(n)
	case []any:
		b.WriteByte('[')
		for i, child := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, child, rank); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(x, y string) int { return rank[x] - rank[y] })

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeString(b, k)
			b.WriteByte(':')
			if err := writeValue(b, t[k], rank); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value of type %T in signing object", v)
	}
	return nil
}

// formatNumber renders n as ECMAScript Number#toString would after a round
// trip through a float64.
func formatNumber(n json.Number) (string, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("invalid number %q: %w", n, err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		// JSON.stringify writes non-finite numbers as null.
		return "null", nil
	}
	if f == 0 {
		return "0", nil
	}

	abs := math.Abs(f)
	format := byte('f')
	if abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	out := strconv.AppendFloat(nil, f, format, -1, 64)
	if format == 'e' {
		// e-07 -> e-7
		n := len(out)
		if n >= 4 && out[n-4] == 'e' && out[n-3] == '-' && out[n-2] == '0' {
			out[n-2] = out[n-1]
			out = out[:n-1]
		}
	}
	return string(out), nil
}

const hexLower = "0123456789abcdef"

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexLower[c>>4])
				b.WriteByte(hexLower[c&0xf])
				continue
			}
			if r, ok := surrogateAt(s, i); ok {
				b.WriteString(`\u`)
				for shift := 12; shift >= 0; shift -= 4 {
					b.WriteByte(hexLower[(r>>shift)&0xf])
				}
				i += 2
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
