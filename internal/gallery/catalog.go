// Package gallery loads the avatar catalogue from a YAML file and upserts it
// into the store at start-up.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opensourceavatars/avatar-site/internal/models"
	"github.com/opensourceavatars/avatar-site/internal/storage"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Collections []CollectionEntry `yaml:"collections"`
}

type CollectionEntry struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Avatars     []AvatarEntry `yaml:"avatars"`
}

type AvatarEntry struct {
	Name          string                 `yaml:"name"`
	Description   string                 `yaml:"description"`
	Author        string                 `yaml:"author"`
	License       string                 `yaml:"license"`
	Format        string                 `yaml:"format"`
	ModelTxID     string                 `yaml:"model_tx_id"`
	ThumbnailTxID string                 `yaml:"thumbnail_tx_id"`
	Tags          []string               `yaml:"tags"`
	Metadata      map[string]interface{} `yaml:"metadata"`
}

type SeedResult struct {
	Collections int
	Avatars     int
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a catalog and checks that every collection and avatar is
// named and every model transaction id is present and unique.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seenTx := make(map[string]string)
	for i, col := range c.Collections {
		if strings.TrimSpace(col.Name) == "" {
			return nil, fmt.Errorf("collection #%d has no name", i+1)
		}
		for j, a := range col.Avatars {
			if strings.TrimSpace(a.Name) == "" {
				return nil, fmt.Errorf("collection %q: avatar #%d has no name", col.Name, j+1)
			}
			if strings.TrimSpace(a.ModelTxID) == "" {
				return nil, fmt.Errorf("avatar %q has no model_tx_id", a.Name)
			}
			if other, dup := seenTx[a.ModelTxID]; dup {
				return nil, fmt.Errorf("avatars %q and %q share model_tx_id %s", other, a.Name, a.ModelTxID)
			}
			seenTx[a.ModelTxID] = a.Name
		}
	}

	return &c, nil
}

// Seed upserts the catalog. Collections are matched by name, avatars by
// model transaction id, so running it twice is harmless.
func Seed(ctx context.Context, store storage.Store, c *Catalog, logger zerolog.Logger) (SeedResult, error) {
	var res SeedResult

	for _, entry := range c.Collections {
		col, err := store.GetCollectionByName(ctx, entry.Name)
		if err != nil {
			return res, fmt.Errorf("failed to look up collection %q: %w", entry.Name, err)
		}
		if col == nil {
			col = models.NewCollection()
			col.Name = entry.Name
		}
		col.Description = entry.Description
		if err := store.CreateCollection(ctx, col); err != nil {
			return res, fmt.Errorf("failed to save collection %q: %w", entry.Name, err)
		}
		res.Collections++

		for _, a := range entry.Avatars {
			avatar, err := newAvatar(col, a)
			if err != nil {
				return res, err
			}
			if err := store.CreateAvatar(ctx, avatar); err != nil {
				return res, fmt.Errorf("failed to save avatar %q: %w", a.Name, err)
			}
			res.Avatars++
		}

		logger.Debug().
			Str("collection", col.Name).
			Int("avatars", len(entry.Avatars)).
			Msg("Seeded collection")
	}

	return res, nil
}

func newAvatar(col *models.Collection, e AvatarEntry) (*models.Avatar, error) {
	avatar := models.NewAvatar()
	avatar.CollectionID = col.ID
	avatar.Name = e.Name
	avatar.Description = e.Description
	avatar.Author = e.Author
	avatar.License = e.License
	avatar.ModelTxID = e.ModelTxID
	avatar.ThumbnailTxID = e.ThumbnailTxID
	if e.Format != "" {
		avatar.Format = strings.ToLower(e.Format)
	}
	if e.Tags != nil {
		avatar.Tags = e.Tags
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("avatar %q: bad metadata: %w", e.Name, err)
		}
		msg := json.RawMessage(raw)
		avatar.Metadata = &msg
	}
	return avatar, nil
}
