package player

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp normalizes backend timestamp representations at the store
// boundary. It accepts RFC 3339 strings and Firestore-style
// {"seconds": n, "nanos": n} objects on decode, and always encodes as an
// RFC 3339 string.
type Timestamp struct {
	time.Time
}

type firestoreTime struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}
	var ft firestoreTime
	if err := json.Unmarshal(data, &ft); err != nil {
		return fmt.Errorf("parse timestamp object: %w", err)
	}
	t.Time = time.Unix(ft.Seconds, ft.Nanos).UTC()
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// SameDay reports whether two timestamps fall on the same calendar day in UTC.
func (t Timestamp) SameDay(other time.Time) bool {
	y1, m1, d1 := t.Time.UTC().Date()
	y2, m2, d2 := other.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsYesterdayOf reports whether t falls on the calendar day immediately
// before the given time, in UTC. Drives streak continuity.
func (t Timestamp) IsYesterdayOf(now time.Time) bool {
	return t.SameDay(now.UTC().AddDate(0, 0, -1))
}
