package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexBool normalizes the loosely-typed boolean representations the legacy
// clients send (true/false, 0/1, "0"/"1", "true"/"false") into a strict bool
// at the JSON boundary. Internal logic never re-derives truthiness.
type FlexBool bool

// UnmarshalJSON accepts bool, number, and string encodings. Anything
// unrecognized decodes to false.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = FlexBool(v)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = FlexBool(parseTruthy(s))
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = FlexBool(n != 0)
		return nil
	}
}

// MarshalJSON always emits a strict JSON bool.
func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// Bool returns the normalized value.
func (b FlexBool) Bool() bool {
	return bool(b)
}

func parseTruthy(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return false
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return false
}
