package models

import (
	"time"

	"github.com/google/uuid"
)

// NewCollection creates a new collection with generated UUID and timestamps
func NewCollection() *Collection {
	now := time.Now()
	return &Collection{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsRoot returns true if the collection has no parent
func (c *Collection) IsRoot() bool {
	return c.ParentID == nil
}
