package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for an attribute tree or
// a plain JSON-like Go value (string, int, int64, bool, []any, map[string]any).
// CRITICAL: This is the ONLY serialization that should be used for
// content-addressed identity computation.
//
// Attribute shapes:
//
//	BoolAttr     true
//	IntegerAttr  {"int":{"type":"i64","value":5}}
//	StringAttr   "s"
//	ArrayAttr    [...]
//	DictAttr     {"dict":{...}}
//	TypeAttr     {"type":"i8"}
//	AppIDAttr    {"appid":{"index":3,"name":"x"}}
//
// Key differences from standard json.Marshal:
// 1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
// 2. No HTML escaping (< > & are NOT escaped)
// 3. Strings must be valid UTF-8 in NFC form (returns error otherwise)
// 4. No floats and no null (returns error)
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v)
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case BoolAttr:
		return marshalCanonicalBool(bool(val)), nil
	case IntegerAttr:
		return marshalCanonicalObject([]canonicalEntry{
			{"int", []canonicalEntry{
				{"type", val.Type.String()},
				{"value", val.Value},
			}},
		})
	case StringAttr:
		return marshalCanonicalString(string(val))
	case ArrayAttr:
		elems := make([]any, len(val))
		for i, a := range val {
			elems[i] = a
		}
		return marshalCanonicalArray(elems)
	case DictAttr:
		fields := make([]canonicalEntry, len(val))
		for i, na := range val {
			fields[i] = canonicalEntry{na.Name, na.Value}
		}
		return marshalCanonicalObject([]canonicalEntry{{"dict", fields}})
	case TypeAttr:
		return marshalCanonicalObject([]canonicalEntry{{"type", val.Type.String()}})
	case AppIDAttr:
		fields := []canonicalEntry{{"name", val.Name}}
		if val.HasIndex {
			if val.Index > 1<<63-1 {
				return nil, fmt.Errorf("appid index out of int64 range: %d", val.Index)
			}
			fields = append(fields, canonicalEntry{"index", int64(val.Index)})
		}
		return marshalCanonicalObject([]canonicalEntry{{"appid", fields}})
	case []canonicalEntry:
		return marshalCanonicalObject(val)
	case string:
		return marshalCanonicalString(val)
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		return marshalCanonicalBool(val), nil
	case []any:
		return marshalCanonicalArray(val)
	case []string:
		elems := make([]any, len(val))
		for i, s := range val {
			elems[i] = s
		}
		return marshalCanonicalArray(elems)
	case map[string]any:
		fields := make([]canonicalEntry, 0, len(val))
		for k, elem := range val {
			fields = append(fields, canonicalEntry{k, elem})
		}
		return marshalCanonicalObject(fields)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// canonicalEntry is one key/value pair of a JSON object under construction.
type canonicalEntry struct {
	key   string
	value any
}

func marshalCanonicalBool(b bool) []byte {
	if b {
		return []byte("true")
	}
	return []byte("false")
}

// marshalCanonicalString produces a canonical JSON string.
// Strings must already be valid UTF-8 in NFC form. They are never rewritten,
// so distinct attributes can never render the same.
// CRITICAL: RFC 8785 compliance:
// - No HTML escaping (<, >, & are NOT escaped)
// - U+2028 (LINE SEPARATOR) and U+2029 (PARAGRAPH SEPARATOR) are NOT escaped
// - Only control characters (U+0000-U+001F), backslash, and quote are escaped
func marshalCanonicalString(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("string %q is not valid UTF-8", s)
	}
	if !norm.NFC.IsNormalString(s) {
		return nil, fmt.Errorf("string %q is not in NFC form", s)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // CRITICAL: <, >, & must NOT be escaped
	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})

	// Go's json.Encoder escapes U+2028/U+2029 for JavaScript compatibility;
	// RFC 8785 wants them literal.
	return unescapeU2028U2029(result), nil
}

// unescapeU2028U2029 converts \u2028 and \u2029 escape sequences to literal
// characters, but preserves \\u2028/\\u2029 (escaped backslash followed by text).
func unescapeU2028U2029(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	backslashes := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '\\' && backslashes%2 == 0 && i+6 <= len(data) &&
			bytes.HasPrefix(data[i:], []byte(`\u202`)) && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			backslashes = 0
			continue
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		out = append(out, c)
	}
	return out
}

// marshalCanonicalArray marshals a list to canonical JSON.
func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalCanonicalObject marshals entries as a JSON object with RFC 8785 key ordering.
func marshalCanonicalObject(fields []canonicalEntry) ([]byte, error) {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b canonicalEntry) int {
		return compareKeysRFC8785(a.key, b.key)
	})

	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, f := range sorted {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := marshalCanonicalString(f.key)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", f.key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(f.value)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", f.key, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
