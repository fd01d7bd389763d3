package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Collection groups avatars in the gallery, e.g. a release drop or an artist set.
type Collection struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Avatar struct {
	ID            uuid.UUID        `json:"id"`
	CollectionID  uuid.UUID        `json:"collection_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Author        string           `json:"author"`
	License       string           `json:"license"`
	Format        string           `json:"format"`
	ModelTxID     string           `json:"model_tx_id"`
	ThumbnailTxID string           `json:"thumbnail_tx_id,omitempty"`
	Tags          []string         `json:"tags"`
	Downloads     int64            `json:"downloads"`
	Metadata      *json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// AvatarView is an Avatar with its gateway URLs resolved for API responses.
type AvatarView struct {
	*Avatar
	ModelURL     string `json:"model_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}
