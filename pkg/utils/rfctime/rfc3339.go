package rfctime

import (
	"encoding/json"
	"time"
)

// Format for date-time in RFC3339 with milliseconds and numeric offset.
//
// Timestamps are stringified with it, so "Z" never appears in output.
const RFC3339DateTimeFormat string = "2006-01-02T15:04:05.999-07:00"

// date-time in https://www.ietf.org/rfc/rfc3339.txt , for payload timestamps in API responses.
type RFC3339 time.Time

func (t RFC3339) Time() time.Time {
	return time.Time(t)
}

// Equal reports both are nil, or both point the same instant.
func (t *RFC3339) Equal(other *RFC3339) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Time().Equal(other.Time())
}

func (t RFC3339) String() string {
	return time.Time(t).Format(RFC3339DateTimeFormat)
}

// ParseRFC3339DateTime parses s as RFC3339 date-time. "Z" is accepted as offset.
func ParseRFC3339DateTime(s string) (RFC3339, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return RFC3339{}, err
	}
	return RFC3339(t), nil
}

func (t RFC3339) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses a RFC3339 string. JSON null leaves t as is.
func (t *RFC3339) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRFC3339DateTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
