package rfctime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/opst/knitlabel/pkg/utils/rfctime"
)

func TestRFC3339_JSON(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)

	t.Run("it marshals with numeric offset, even for UTC", func(t *testing.T) {
		for expected, value := range map[string]time.Time{
			`"2024-05-06T07:08:09.123+00:00"`: time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC),
			`"2024-05-06T16:08:09+09:00"`:     time.Date(2024, 5, 6, 16, 8, 9, 0, jst),
		} {
			actual, err := json.Marshal(rfctime.RFC3339(value))
			if err != nil {
				t.Fatal(err)
			}
			if string(actual) != expected {
				t.Errorf("marshalled: %s, want %s", actual, expected)
			}
		}
	})

	t.Run("it unmarshals Z and numeric offset", func(t *testing.T) {
		expected := rfctime.RFC3339(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
		for _, in := range []string{
			`"2024-05-06T07:08:09Z"`,
			`"2024-05-06T16:08:09+09:00"`,
		} {
			actual := rfctime.RFC3339{}
			if err := json.Unmarshal([]byte(in), &actual); err != nil {
				t.Fatal(err)
			}
			if !actual.Equal(&expected) {
				t.Errorf("unmarshalled %s: %s, want %s", in, actual, expected)
			}
		}
	})

	t.Run("it leaves the value for null", func(t *testing.T) {
		actual := struct {
			At *rfctime.RFC3339 `json:"at"`
		}{}
		if err := json.Unmarshal([]byte(`{"at": null}`), &actual); err != nil {
			t.Fatal(err)
		}
		if actual.At != nil {
			t.Errorf("at: %s", actual.At)
		}
	})

	t.Run("it rejects non-RFC3339 string", func(t *testing.T) {
		actual := rfctime.RFC3339{}
		if err := json.Unmarshal([]byte(`"2024/05/06 07:08:09"`), &actual); err == nil {
			t.Errorf("no error: %s", actual)
		}
	})
}

func TestRFC3339_Equal(t *testing.T) {
	a := rfctime.RFC3339(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	b := rfctime.RFC3339(time.Date(2024, 5, 6, 16, 8, 9, 0, time.FixedZone("JST", 9*60*60)))
	c := rfctime.RFC3339(time.Date(2024, 5, 6, 7, 8, 10, 0, time.UTC))

	for name, testcase := range map[string]struct {
		a, b     *rfctime.RFC3339
		expected bool
	}{
		"same instant in different zones": {&a, &b, true},
		"different instants":              {&a, &c, false},
		"nil and non-nil":                 {nil, &a, false},
		"both nil":                        {nil, nil, true},
	} {
		t.Run(name, func(t *testing.T) {
			if actual := testcase.a.Equal(testcase.b); actual != testcase.expected {
				t.Errorf("Equal: %v, want %v", actual, testcase.expected)
			}
		})
	}
}
