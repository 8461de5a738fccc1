package archive

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Row is one flattened tweet record. Keys are dotted paths into the
// original nested object ("entities.urls", "user.id_str"). Values are the
// decoded JSON leaves: string, float64, bool, nil, or []interface{} for
// arrays that are kept whole.
type Row map[string]interface{}

// Flatten walks a decoded JSON object and returns its dotted-path form.
// Nested objects recurse; arrays are kept as a single leaf under their
// path so entity lists stay inspectable.
func Flatten(obj map[string]interface{}) Row {
	out := make(Row, len(obj))
	flattenInto("", obj, out)
	return out
}

func flattenInto(prefix string, obj map[string]interface{}, out Row) {
	for key, val := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := val.(map[string]interface{}); ok {
			flattenInto(path, nested, out)
			continue
		}
		out[path] = val
	}
}

// HasPrefix reports whether any key starts with the given dotted prefix.
// Useful for detecting nested sub-objects after flattening, e.g. a
// retweeted_status payload.
func (r Row) HasPrefix(prefix string) bool {
	dotted := prefix + "."
	for k, v := range r {
		if v == nil {
			continue
		}
		if k == prefix || strings.HasPrefix(k, dotted) {
			return true
		}
	}
	return false
}

// Has reports whether any of the given paths is present and non-nil.
func (r Row) Has(paths ...string) bool {
	for _, p := range paths {
		if v, ok := r[p]; ok && v != nil {
			return true
		}
	}
	return false
}

// Str returns the first present value among paths coerced to string.
// Missing or nil values yield "".
func (r Row) Str(paths ...string) string {
	for _, p := range paths {
		v, ok := r[p]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case float64:
			// Archive ids arrive as numbers in some exports; format
			// without an exponent so ids survive.
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// Int returns the first present value among paths coerced to int.
// Strings are parsed; anything malformed or missing yields 0.
func (r Row) Int(paths ...string) int {
	for _, p := range paths {
		v, ok := r[p]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				return n
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return int(f)
			}
		case bool:
			if t {
				return 1
			}
		}
	}
	return 0
}

// Bool returns the first present value among paths coerced to bool.
// Accepts JSON booleans and the string forms "true"/"false". Missing or
// malformed values yield false.
func (r Row) Bool(paths ...string) bool {
	for _, p := range paths {
		v, ok := r[p]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return b
			}
		case float64:
			return t != 0
		}
	}
	return false
}

// List returns the first present value among paths as a slice. Values
// that arrive as a JSON-encoded string are decoded first, since some
// exports serialize entity sub-structures as literal strings. Missing or
// undecodable values yield nil.
func (r Row) List(paths ...string) []interface{} {
	for _, p := range paths {
		v, ok := r[p]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case []interface{}:
			return t
		case string:
			trimmed := strings.TrimSpace(t)
			if !strings.HasPrefix(trimmed, "[") {
				continue
			}
			var decoded []interface{}
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				return decoded
			}
		}
	}
	return nil
}
