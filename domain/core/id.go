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
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
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
	// RunID identifies one batch run spanning many analysis conditions.
	RunID ID
	// ConditionID identifies a single analysis condition, i.e. one paired
	// prior/current score set (e.g. a grade-transition x content-area x cohort
	// combination).
	ConditionID ID
)

// String conversions for domain IDs
func (id RunID) String() string       { return ID(id).String() }
func (id ConditionID) String() string { return ID(id).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseConditionID parses a string into ConditionID
func ParseConditionID(s string) (ConditionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("condition ID cannot be empty")
	}
	return ConditionID(s), nil
}
