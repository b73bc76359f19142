package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt is an int that can be unmarshaled from either a JSON number or a JSON string.
// HTML forms post order indexes and versions as strings.
type FlexInt int64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		val, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FlexInt: invalid integer string %q: %w", s, err)
		}
		*f = FlexInt(val)
		return nil
	}

	return fmt.Errorf("FlexInt: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}

// Int converts FlexInt back to int.
func (f FlexInt) Int() int {
	return int(f)
}
