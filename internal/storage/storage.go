package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/opensourceavatars/avatar-site/internal/models"
)

// ErrAvatarNotFound is returned by write operations that target a missing
// avatar. Reads return (nil, nil) instead.
var ErrAvatarNotFound = errors.New("avatar not found")

type Store interface {
	Initialize() error
	Close() error

	// Collection operations
	CreateCollection(ctx context.Context, collection *models.Collection) error
	GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	GetCollectionByName(ctx context.Context, name string) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]*models.Collection, error)

	// Avatar operations
	CreateAvatar(ctx context.Context, avatar *models.Avatar) error
	GetAvatar(ctx context.Context, id uuid.UUID) (*models.Avatar, error)
	ListAvatars(ctx context.Context, limit, offset int) ([]*models.Avatar, error)
	CountAvatars(ctx context.Context) (int, error)
	SearchAvatars(ctx context.Context, query string, limit, offset int) ([]*models.Avatar, error)
	GetAvatarsByCollection(ctx context.Context, collectionID uuid.UUID, limit, offset int) ([]*models.Avatar, error)
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
}

// Open returns an initialized store for the configured driver.
func Open(driver, url string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch driver {
	case "sqlite3":
		store, err = NewSQLiteStore(url)
	case "postgres":
		store, err = NewPostgresStore(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}
	return store, nil
}

func nilIfEmpty(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func nilIfNil(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring LIKE match. Callers must declare
// ESCAPE '\' so wildcards typed by the user match literally.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
