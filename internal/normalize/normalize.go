// Package normalize coerces values of unknown shape into ordered string lists.
//
// Question choices and correct-answer sets come back from the backend in
// whatever shape a given row happens to carry: a real JSON array, a
// JSON-encoded string, a bare scalar, or null. Everything funnels through
// Strings (or StringList during decode) so the rest of the code only ever
// sees []string.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Strings coerces v into a list of strings. It is total: no input raises an
// error, malformed values degrade to a best-effort single element or nil.
//
//   - []string / []any: returned as a shallow copy, elements stringified
//   - nil: nil
//   - string: parsed as a JSON array when possible, otherwise the trimmed
//     string as a single element (nil when blank)
//   - anything else: a single stringified element
func Strings(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, stringify(e))
		}
		return out
	case string:
		return fromString(x)
	default:
		return []string{stringify(x)}
	}
}

func fromString(s string) []string {
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			out = append(out, stringify(e))
		}
		return out
	}
	if t := strings.TrimSpace(s); t != "" {
		return []string{t}
	}
	return nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		// JSON numbers decode as float64; keep integers unadorned
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

// StringList is a []string that applies the Strings coercion while decoding
// JSON, so heterogeneous backend rows normalize at the wire boundary.
// Unmarshalling never fails.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = nil
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		// Not valid JSON at all; treat the raw text as a single scalar.
		*s = StringList(fromString(trimmed))
		return nil
	}
	*s = StringList(Strings(v))
	return nil
}

func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal([]string(s))
}
