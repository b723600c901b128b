package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SessionID identifies one browser session of the dashboard
type SessionID string

// NewSessionID creates a new unique identifier using UUID v7 for time-ordered generation
func NewSessionID() SessionID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return SessionID(id.String())
}

// String returns the string representation
func (id SessionID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id SessionID) IsEmpty() bool {
	return id == ""
}

// ParseSessionID validates a session identifier read back from a cookie
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid session ID: %w", err)
	}
	return SessionID(s), nil
}
