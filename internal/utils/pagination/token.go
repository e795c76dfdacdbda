package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ClampLimit applies the default page size to non-positive limits and caps large ones.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Cursor is the keyset position of the last item on a page: its timestamp and
// its ID as a tie-breaker.
type Cursor struct {
	At time.Time
	ID string
}

// Before reports whether an item at (at, id) sorts after the cursor in
// newest-first order, i.e. belongs on the next page.
func (c Cursor) Before(at time.Time, id string) bool {
	if at.Equal(c.At) {
		return id < c.ID
	}
	return at.Before(c.At)
}

// EncodeToken creates a base64 encoded token from an item's timestamp and ID.
// This is used for consistent pagination across different repositories.
func EncodeToken(at time.Time, id string) string {
	tokenStr := fmt.Sprintf("%s|%s", at.UTC().Format(timeFormat), id)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into a cursor.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	at, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (time parse): %w", err)
	}

	return Cursor{At: at, ID: parts[1]}, nil
}
