package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type cursor struct {
	Key string    `json:"k,omitempty"`
	At  time.Time `json:"t,omitempty"`
	ID  string    `json:"id"`
}

// EncodeCursor renders an opaque keyset token from the last item's ordering value (string or
// time.Time) and its ID.
func EncodeCursor(value any, id string) (string, error) {
	c := cursor{ID: id}
	switch v := value.(type) {
	case string:
		c.Key = v
	case time.Time:
		c.At = v.UTC()
	default:
		return "", fmt.Errorf("pagination: unsupported cursor value %T", value)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor reverses EncodeCursor. The returned value is a time.Time when the cursor was built
// from one, a string otherwise.
func DecodeCursor(token string) (any, string, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	if c.ID == "" {
		return nil, "", fmt.Errorf("%w: missing id", ErrInvalidPageToken)
	}
	if !c.At.IsZero() {
		return c.At, c.ID, nil
	}
	return c.Key, c.ID, nil
}
