package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/opensourceavatars/avatar-site/internal/models"
)

const sqliteAvatarColumns = `id, collection_id, name, description, author, license, format,
            model_tx_id, thumbnail_tx_id, tags, downloads, metadata, created_at, updated_at`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS collections (
            id TEXT PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            description TEXT,
            parent_id TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(parent_id) REFERENCES collections(id)
        )`,
		`CREATE TABLE IF NOT EXISTS avatars (
            id TEXT PRIMARY KEY,
            collection_id TEXT,
            name TEXT NOT NULL,
            description TEXT,
            author TEXT,
            license TEXT,
            format TEXT NOT NULL DEFAULT 'vrm',
            model_tx_id TEXT UNIQUE NOT NULL,
            thumbnail_tx_id TEXT,
            tags TEXT,
            downloads INTEGER NOT NULL DEFAULT 0,
            metadata TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(collection_id) REFERENCES collections(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_avatars_collection_id ON avatars(collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_avatars_created_at ON avatars(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) CreateCollection(ctx context.Context, collection *models.Collection) error {
	query := `
        INSERT INTO collections (id, name, description, parent_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            description = excluded.description,
            parent_id = excluded.parent_id,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		collection.ID.String(),
		collection.Name,
		collection.Description,
		nilIfEmpty(collection.ParentID),
		collection.CreatedAt,
		collection.UpdatedAt,
	)

	return err
}

func (s *SQLiteStore) GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	query := `
        SELECT id, name, description, parent_id, created_at, updated_at
        FROM collections
        WHERE id = ?
    `
	return s.queryCollection(ctx, query, id.String())
}

func (s *SQLiteStore) GetCollectionByName(ctx context.Context, name string) (*models.Collection, error) {
	query := `
        SELECT id, name, description, parent_id, created_at, updated_at
        FROM collections
        WHERE name = ?
    `
	return s.queryCollection(ctx, query, name)
}

func (s *SQLiteStore) queryCollection(ctx context.Context, query string, arg interface{}) (*models.Collection, error) {
	collection, err := scanCollection(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *SQLiteStore) ListCollections(ctx context.Context) ([]*models.Collection, error) {
	query := `
        SELECT id, name, description, parent_id, created_at, updated_at
        FROM collections
        ORDER BY name
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*models.Collection
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}

	return collections, rows.Err()
}

func (s *SQLiteStore) CreateAvatar(ctx context.Context, avatar *models.Avatar) error {
	query := `
        INSERT INTO avatars (` + sqliteAvatarColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(model_tx_id) DO UPDATE SET
            collection_id = excluded.collection_id,
            name = excluded.name,
            description = excluded.description,
            author = excluded.author,
            license = excluded.license,
            format = excluded.format,
            thumbnail_tx_id = excluded.thumbnail_tx_id,
            tags = excluded.tags,
            metadata = excluded.metadata,
            updated_at = CURRENT_TIMESTAMP
    `

	tags := avatar.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		avatar.ID.String(),
		nilIfNil(avatar.CollectionID),
		avatar.Name,
		avatar.Description,
		avatar.Author,
		avatar.License,
		avatar.Format,
		avatar.ModelTxID,
		avatar.ThumbnailTxID,
		string(tagsJSON),
		avatar.Downloads,
		metadataArg(avatar.Metadata),
		avatar.CreatedAt,
		avatar.UpdatedAt,
	)

	return err
}

func (s *SQLiteStore) GetAvatar(ctx context.Context, id uuid.UUID) (*models.Avatar, error) {
	query := `
        SELECT ` + sqliteAvatarColumns + `
        FROM avatars
        WHERE id = ?
    `

	avatar, err := scanSQLiteAvatar(s.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return avatar, nil
}

func (s *SQLiteStore) ListAvatars(ctx context.Context, limit, offset int) ([]*models.Avatar, error) {
	query := `
        SELECT ` + sqliteAvatarColumns + `
        FROM avatars
        ORDER BY created_at DESC, name
        LIMIT ? OFFSET ?
    `

	return s.queryAvatars(ctx, query, limit, offset)
}

func (s *SQLiteStore) CountAvatars(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM avatars`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) SearchAvatars(ctx context.Context, searchTerm string, limit, offset int) ([]*models.Avatar, error) {
	query := `
        SELECT ` + sqliteAvatarColumns + `
        FROM avatars
        WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
           OR author LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\'
        ORDER BY created_at DESC, name
        LIMIT ? OFFSET ?
    `

	searchPattern := likePattern(searchTerm)
	return s.queryAvatars(ctx, query, searchPattern, searchPattern, searchPattern, searchPattern, limit, offset)
}

func (s *SQLiteStore) GetAvatarsByCollection(ctx context.Context, collectionID uuid.UUID, limit, offset int) ([]*models.Avatar, error) {
	query := `
        SELECT ` + sqliteAvatarColumns + `
        FROM avatars
        WHERE collection_id = ?
        ORDER BY created_at DESC, name
        LIMIT ? OFFSET ?
    `

	return s.queryAvatars(ctx, query, collectionID.String(), limit, offset)
}

func (s *SQLiteStore) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE avatars SET downloads = downloads + 1 WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAvatarNotFound
	}
	return nil
}

func (s *SQLiteStore) queryAvatars(ctx context.Context, query string, args ...interface{}) ([]*models.Avatar, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var avatars []*models.Avatar
	for rows.Next() {
		avatar, err := scanSQLiteAvatar(rows)
		if err != nil {
			return nil, err
		}
		avatars = append(avatars, avatar)
	}

	return avatars, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCollection(row scanner) (*models.Collection, error) {
	var collection models.Collection
	var idStr string
	var description, parentIDStr sql.NullString

	err := row.Scan(
		&idStr,
		&collection.Name,
		&description,
		&parentIDStr,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	collection.ID, _ = uuid.Parse(idStr)
	collection.Description = description.String
	if parentIDStr.Valid {
		parentID, err := uuid.Parse(parentIDStr.String)
		if err == nil {
			collection.ParentID = &parentID
		}
	}

	return &collection, nil
}

func scanSQLiteAvatar(row scanner) (*models.Avatar, error) {
	var avatar models.Avatar
	var idStr string
	var collectionIDStr, description, author, license, thumbnail, tagsJSON, metadata sql.NullString

	err := row.Scan(
		&idStr,
		&collectionIDStr,
		&avatar.Name,
		&description,
		&author,
		&license,
		&avatar.Format,
		&avatar.ModelTxID,
		&thumbnail,
		&tagsJSON,
		&avatar.Downloads,
		&metadata,
		&avatar.CreatedAt,
		&avatar.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	avatar.ID, _ = uuid.Parse(idStr)
	if collectionIDStr.Valid {
		avatar.CollectionID, _ = uuid.Parse(collectionIDStr.String)
	}
	avatar.Description = description.String
	avatar.Author = author.String
	avatar.License = license.String
	avatar.ThumbnailTxID = thumbnail.String
	avatar.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &avatar.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of avatar %s: %w", idStr, err)
		}
	}
	avatar.Metadata = metadataValue(metadata)

	return &avatar, nil
}

func metadataArg(m *json.RawMessage) interface{} {
	if m == nil || len(*m) == 0 {
		return nil
	}
	return string(*m)
}

func metadataValue(ns sql.NullString) *json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	raw := json.RawMessage(ns.String)
	return &raw
}
