// Package timex holds small time helpers shared by the config loaders and the
// local store.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration wraps time.Duration so that JSON config files can carry either a
// string like "36h" or an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// ToMillis converts t to unix milliseconds, the representation used for every
// timestamp column in the local SQLite store.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis is the inverse of ToMillis. The result is always UTC.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
