package repository

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// storedTimeLayout keeps every digit so stored strings share one width and
// SQLite's text ordering matches chronological ordering.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}
