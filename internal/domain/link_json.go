package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// linkJSON is the wire shape of a Link, shared by every persistence layer.
type linkJSON struct {
	ID             string          `json:"id"`
	URL            string          `json:"url"`
	Description    string          `json:"description,omitempty"`
	CreatedAt      json.RawMessage `json:"createdAt,omitempty"`
	LastAccessedAt json.RawMessage `json:"lastAccessedAt,omitempty"`
	NumAccessed    int64           `json:"numAccessed"`
	DeletedAt      json.RawMessage `json:"deletedAt,omitempty"`
}

// MarshalJSON encodes timestamps as RFC3339 strings and omits nil ones.
func (l Link) MarshalJSON() ([]byte, error) {
	created, err := json.Marshal(l.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	out := linkJSON{
		ID:          l.ID,
		URL:         l.URL,
		Description: l.Description,
		CreatedAt:   created,
		NumAccessed: l.NumAccessed,
	}
	if l.LastAccessedAt != nil {
		out.LastAccessedAt, _ = json.Marshal(l.LastAccessedAt.UTC().Format(time.RFC3339Nano))
	}
	if l.DeletedAt != nil {
		out.DeletedAt, _ = json.Marshal(l.DeletedAt.UTC().Format(time.RFC3339Nano))
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts RFC3339 strings or epoch milliseconds for timestamps.
// Malformed timestamps decode to the zero time instead of failing.
func (l *Link) UnmarshalJSON(data []byte) error {
	var in linkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*l = Link{
		ID:          in.ID,
		URL:         in.URL,
		Description: in.Description,
		CreatedAt:   ParseTimestamp(in.CreatedAt),
		NumAccessed: in.NumAccessed,
	}
	if l.NumAccessed < 0 {
		l.NumAccessed = 0
	}
	if present(in.LastAccessedAt) {
		t := ParseTimestamp(in.LastAccessedAt)
		l.LastAccessedAt = &t
	}
	if present(in.DeletedAt) {
		t := ParseTimestamp(in.DeletedAt)
		l.DeletedAt = &t
	}
	return nil
}

// ParseTimestamp decodes a JSON timestamp value.
// Supported: RFC3339 strings, numeric strings and numbers (epoch milliseconds).
// Anything else yields the zero time.
func ParseTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if !present(raw) {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
		return time.Time{}
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC()
	}

	return time.Time{}
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
