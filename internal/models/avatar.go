package models

import (
	"time"

	"github.com/google/uuid"
)

const FormatVRM = "vrm"

// NewAvatar creates a new avatar with generated UUID and timestamps
func NewAvatar() *Avatar {
	now := time.Now()
	return &Avatar{
		ID:        uuid.New(),
		Format:    FormatVRM,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
