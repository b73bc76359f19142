package siteconfig

import (
	"encoding/json"
	"math"
	"strings"

	"gorm.io/datatypes"
)

// decode turns an untrusted input into a generic JSON value. Encoded inputs
// get exactly one decode attempt. Typed values are re-encoded so that parsing
// already-validated output goes through the same field checks.
func decode(input any) (any, bool) {
	switch v := input.(type) {
	case nil:
		return nil, false
	case string:
		return decodeBytes([]byte(v))
	case []byte:
		return decodeBytes(v)
	case json.RawMessage:
		return decodeBytes(v)
	case datatypes.JSON:
		return decodeBytes(v)
	case map[string]any, []any, bool, float64:
		return v, true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return decodeBytes(b)
	}
}

func decodeBytes(b []byte) (any, bool) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false
	}
	if out == nil {
		return nil, false
	}
	return out, true
}

func decodeObject(input any) (map[string]any, bool) {
	v, ok := decode(input)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func decodeArray(input any) ([]any, bool) {
	v, ok := decode(input)
	if !ok {
		return nil, false
	}
	a, ok := v.([]any)
	return a, ok
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func boolField(m map[string]any, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

// intField accepts whole JSON numbers only.
func intField(m map[string]any, key string) (int, bool) {
	f, ok := m[key].(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
