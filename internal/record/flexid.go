package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexID menampung identifier record yang di upstream kadang berupa angka
// (surrogate key) dan kadang berupa string (business key).
type FlexID string

// UnmarshalJSON menerima string maupun angka JSON.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// MarshalJSON selalu menulis bentuk string.
func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// Int64 mengembalikan interpretasi numerik bila ada.
func (f FlexID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (f FlexID) String() string { return string(f) }

// IsZero melaporkan identifier kosong.
func (f FlexID) IsZero() bool { return strings.TrimSpace(string(f)) == "" }
