package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AccountID ID
	ActionID  ID
	ReportID  ID
	ColumnKey ID
)

// String conversions for domain IDs
func (id AccountID) String() string { return ID(id).String() }
func (id ActionID) String() string  { return ID(id).String() }
func (id ReportID) String() string  { return ID(id).String() }
func (k ColumnKey) String() string  { return ID(k).String() }

// ParseAccountID parses a string into AccountID
func ParseAccountID(s string) (AccountID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("account ID cannot be empty")
	}
	return AccountID(s), nil
}

// ParseColumnKey parses a string into ColumnKey
func ParseColumnKey(s string) (ColumnKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("column key cannot be empty")
	}
	return ColumnKey(s), nil
}
