package models

import (
	"encoding/json"
	"strconv"
)

// Numeric holds a numeric request value as text. It accepts JSON numbers
// and numeric strings, and keeps any other scalar verbatim so validation
// can report it against its field instead of failing the whole decode.
type Numeric string

// UnmarshalJSON stores strings unquoted and every other literal as written.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	*n = Numeric(data)
	return nil
}

// Float64 parses the value. Call it after the "decimal" validation passed.
func (n Numeric) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}
