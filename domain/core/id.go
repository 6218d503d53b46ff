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
	StudyID      ID
	DesignID     ID
	ArmID        ID
	AllocationID ID
)

func (id StudyID) String() string      { return ID(id).String() }
func (id DesignID) String() string     { return ID(id).String() }
func (id ArmID) String() string        { return ID(id).String() }
func (id AllocationID) String() string { return ID(id).String() }

// NewAllocationID creates a time-ordered allocation identifier
func NewAllocationID() AllocationID {
	return AllocationID(NewID())
}

// ParseDesignID parses a string into DesignID
func ParseDesignID(s string) (DesignID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("design ID cannot be empty")
	}
	return DesignID(s), nil
}

// ParseAllocationID parses a string into AllocationID
func ParseAllocationID(s string) (AllocationID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("allocation ID cannot be empty")
	}
	return AllocationID(s), nil
}
