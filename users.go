package finagle

import (
	"errors"
	"strings"
	"time"
)

// User owns a set of transactions.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateUsername checks a username and returns it trimmed.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("username is required")
	}
	if len(name) > 100 {
		return "", errors.New("username is longer than 100 characters")
	}
	return name, nil
}
