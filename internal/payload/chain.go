// Package payload reads values out of decrypted gateway documents.
//
// The gateway has renamed most fields at least once, so every logical value
// is looked up through an ordered Chain of candidate paths; the first present
// candidate wins. All chains live in fields.go.
package payload

import (
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// Path is a key path into a JSON document, e.g. {"data", "HlsUrl"}.
type Path []string

// Chain is an ordered list of candidate paths for one logical value.
type Chain []Path

// Keys builds a Chain of single-key paths under the given prefix.
func Keys(prefix Path, keys ...string) Chain {
	out := make(Chain, 0, len(keys))
	for _, k := range keys {
		p := make(Path, 0, len(prefix)+1)
		p = append(p, prefix...)
		out = append(out, append(p, k))
	}
	return out
}

// Then concatenates chains, preserving order.
func (c Chain) Then(next ...Chain) Chain {
	out := append(Chain(nil), c...)
	for _, n := range next {
		out = append(out, n...)
	}
	return out
}

// String returns the first candidate holding a non-empty string or a
// non-zero number. Numbers are returned in their JSON text form.
func (c Chain) String(doc []byte) string {
	for _, p := range c {
		v, typ, _, err := jsonparser.Get(doc, p...)
		if err != nil {
			continue
		}
		switch typ {
		case jsonparser.String:
			s, err := jsonparser.ParseString(v)
			if err != nil {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		case jsonparser.Number:
			if f, err := strconv.ParseFloat(string(v), 64); err == nil && f != 0 {
				return string(v)
			}
		}
	}
	return ""
}

// Array returns the elements of the first candidate that is a JSON array.
// An empty array still wins over later candidates. ok is false when no
// candidate is an array.
func (c Chain) Array(doc []byte) (items [][]byte, ok bool) {
	for _, p := range c {
		v, typ, _, err := jsonparser.Get(doc, p...)
		if err != nil || typ != jsonparser.Array {
			continue
		}
		items = make([][]byte, 0, 16)
		_, _ = jsonparser.ArrayEach(v, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if dataType == jsonparser.Object {
				items = append(items, value)
			}
		})
		return items, true
	}
	return nil, false
}

// Objects is Array without the presence flag.
func (c Chain) Objects(doc []byte) [][]byte {
	items, _ := c.Array(doc)
	return items
}
