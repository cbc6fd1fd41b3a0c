// Package content slices JSON array bodies returned by the integration API.
//
// Bodies are kept as raw bytes; elements are copied verbatim so the trimmed
// body is byte-compatible with what the server sent.
package content

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrNotArray is returned when a body is not a JSON array.
var ErrNotArray = errors.New("body is not a JSON array")

var emptyArray = []byte("[]")

// elements parses body and returns the raw JSON of each array element.
// An empty or whitespace-only body is treated as an empty array.
func elements(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrNotArray
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, ErrNotArray
	}

	items := result.Array()
	raw := make([]string, len(items))
	for i, item := range items {
		raw[i] = item.Raw
	}
	return raw, nil
}

// join rebuilds an array body from raw elements.
func join(raw []string) []byte {
	if len(raw) == 0 {
		return append([]byte(nil), emptyArray...)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range raw {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(r)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// Count returns the number of elements in a JSON array body.
func Count(body []byte) (int, error) {
	raw, err := elements(body)
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// TrimToFirstN keeps the first n elements. n < 0 keeps nothing.
func TrimToFirstN(body []byte, n int) ([]byte, error) {
	return TrimFromOffsetForN(body, 0, n)
}

// TrimFromOffset keeps the elements at index >= offset.
func TrimFromOffset(body []byte, offset int) ([]byte, error) {
	raw, err := elements(body)
	if err != nil {
		return nil, err
	}
	return join(window(raw, offset, len(raw))), nil
}

// TrimFromOffsetForN keeps at most n elements starting at offset.
func TrimFromOffsetForN(body []byte, offset, n int) ([]byte, error) {
	raw, err := elements(body)
	if err != nil {
		return nil, err
	}
	return join(window(raw, offset, n)), nil
}

func window(raw []string, offset, n int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(raw) || n <= 0 {
		return nil
	}
	end := offset + n
	if end > len(raw) {
		end = len(raw)
	}
	return raw[offset:end]
}

// Rows flattens several array bodies into one ordered slice of rows.
func Rows(bodies ...[]byte) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	for _, body := range bodies {
		raw, err := elements(body)
		if err != nil {
			return nil, err
		}
		for _, r := range raw {
			rows = append(rows, json.RawMessage(r))
		}
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return rows, nil
}
