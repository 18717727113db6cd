package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp is a time encoded as an RFC3339 UTC string, which sorts
// lexically and survives text-only transports such as the clipboard.
type Timestamp struct {
	time.Time
}

// ParseTime parses an RFC3339 timestamp.
func ParseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(v))
}

// FormatTime renders v in the backup timestamp format.
func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339)
}

func stamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func stampPtr(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	return &Timestamp{Time: *t}
}

func (t *Timestamp) timePtr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", FormatTime(t.Time))), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return fmt.Errorf("timestamp must be an RFC3339 string: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(text)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) String() string {
	return FormatTime(t.Time)
}
