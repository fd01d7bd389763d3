package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/opensourceavatars/avatar-site/internal/models"
)

const postgresAvatarColumns = `id, collection_id, name, description, author, license, format,
            model_tx_id, thumbnail_tx_id, tags, downloads, metadata, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS collections (
            id UUID PRIMARY KEY,
            name VARCHAR(255) UNIQUE NOT NULL,
            description TEXT,
            parent_id UUID REFERENCES collections(id),
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS avatars (
            id UUID PRIMARY KEY,
            collection_id UUID REFERENCES collections(id),
            name VARCHAR(255) NOT NULL,
            description TEXT,
            author VARCHAR(255),
            license VARCHAR(255),
            format VARCHAR(32) NOT NULL DEFAULT 'vrm',
            model_tx_id VARCHAR(128) UNIQUE NOT NULL,
            thumbnail_tx_id VARCHAR(128),
            tags TEXT[],
            downloads BIGINT NOT NULL DEFAULT 0,
            metadata JSONB,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_avatars_collection_id ON avatars(collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_avatars_tags ON avatars USING GIN(tags)`,
		`CREATE INDEX IF NOT EXISTS idx_avatars_fts ON avatars USING GIN (to_tsvector('simple', name || ' ' || coalesce(description, '')))`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateCollection(ctx context.Context, collection *models.Collection) error {
	query := `
        INSERT INTO collections (id, name, description, parent_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            parent_id = EXCLUDED.parent_id,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		collection.ID,
		collection.Name,
		collection.Description,
		collection.ParentID,
		collection.CreatedAt,
		collection.UpdatedAt,
	)

	return err
}

func (s *PostgresStore) GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	query := `
        SELECT id, name, description, parent_id, created_at, updated_at
        FROM collections
        WHERE id = $1
    `
	return s.queryCollection(ctx, query, id)
}

func (s *PostgresStore) GetCollectionByName(ctx context.Context, name string) (*models.Collection, error) {
	query := `
        SELECT id, name, description, parent_id, created_at, updated_at
        FROM collections
        WHERE name = $1
    `
	return s.queryCollection(ctx, query, name)
}

func (s *PostgresStore) queryCollection(ctx context.Context, query string, arg interface{}) (*models.Collection, error) {
	collection, err := scanPostgresCollection(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *PostgresStore) ListCollections(ctx context.Context) ([]*models.Collection, error) {
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
		collection, err := scanPostgresCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}

	return collections, rows.Err()
}

func (s *PostgresStore) CreateAvatar(ctx context.Context, avatar *models.Avatar) error {
	query := `
        INSERT INTO avatars (` + postgresAvatarColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (model_tx_id) DO UPDATE SET
            collection_id = EXCLUDED.collection_id,
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            author = EXCLUDED.author,
            license = EXCLUDED.license,
            format = EXCLUDED.format,
            thumbnail_tx_id = EXCLUDED.thumbnail_tx_id,
            tags = EXCLUDED.tags,
            metadata = EXCLUDED.metadata,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		avatar.ID,
		nilIfNil(avatar.CollectionID),
		avatar.Name,
		avatar.Description,
		avatar.Author,
		avatar.License,
		avatar.Format,
		avatar.ModelTxID,
		avatar.ThumbnailTxID,
		pq.Array(avatar.Tags),
		avatar.Downloads,
		metadataArg(avatar.Metadata),
		avatar.CreatedAt,
		avatar.UpdatedAt,
	)

	return err
}

func (s *PostgresStore) GetAvatar(ctx context.Context, id uuid.UUID) (*models.Avatar, error) {
	query := `
        SELECT ` + postgresAvatarColumns + `
        FROM avatars
        WHERE id = $1
    `

	avatar, err := scanPostgresAvatar(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return avatar, nil
}

func (s *PostgresStore) ListAvatars(ctx context.Context, limit, offset int) ([]*models.Avatar, error) {
	query := `
        SELECT ` + postgresAvatarColumns + `
        FROM avatars
        ORDER BY created_at DESC, name
        LIMIT $1 OFFSET $2
    `

	return s.queryAvatars(ctx, query, limit, offset)
}

func (s *PostgresStore) CountAvatars(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM avatars`).Scan(&n)
	return n, err
}

func (s *PostgresStore) SearchAvatars(ctx context.Context, query string, limit, offset int) ([]*models.Avatar, error) {
	sqlQuery := `
        SELECT ` + postgresAvatarColumns + `
        FROM avatars
        WHERE to_tsvector('simple', name || ' ' || coalesce(description, '')) @@ plainto_tsquery('simple', $1)
           OR $1 = ANY(tags)
           OR author ILIKE $4 ESCAPE '\'
        ORDER BY ts_rank(to_tsvector('simple', name || ' ' || coalesce(description, '')), plainto_tsquery('simple', $1)) DESC, name
        LIMIT $2 OFFSET $3
    `

	return s.queryAvatars(ctx, sqlQuery, query, limit, offset, likePattern(query))
}

func (s *PostgresStore) GetAvatarsByCollection(ctx context.Context, collectionID uuid.UUID, limit, offset int) ([]*models.Avatar, error) {
	query := `
        SELECT ` + postgresAvatarColumns + `
        FROM avatars
        WHERE collection_id = $1
        ORDER BY created_at DESC, name
        LIMIT $2 OFFSET $3
    `

	return s.queryAvatars(ctx, query, collectionID, limit, offset)
}

func (s *PostgresStore) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE avatars SET downloads = downloads + 1 WHERE id = $1`, id)
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

func (s *PostgresStore) queryAvatars(ctx context.Context, query string, args ...interface{}) ([]*models.Avatar, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var avatars []*models.Avatar
	for rows.Next() {
		avatar, err := scanPostgresAvatar(rows)
		if err != nil {
			return nil, err
		}
		avatars = append(avatars, avatar)
	}

	return avatars, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanPostgresCollection(row scanner) (*models.Collection, error) {
	collection := &models.Collection{}
	var description sql.NullString

	err := row.Scan(
		&collection.ID,
		&collection.Name,
		&description,
		&collection.ParentID,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	collection.Description = description.String
	return collection, nil
}

func scanPostgresAvatar(row scanner) (*models.Avatar, error) {
	avatar := &models.Avatar{}
	var collectionID uuid.NullUUID
	var description, author, license, thumbnail, metadata sql.NullString
	var tags []string

	err := row.Scan(
		&avatar.ID,
		&collectionID,
		&avatar.Name,
		&description,
		&author,
		&license,
		&avatar.Format,
		&avatar.ModelTxID,
		&thumbnail,
		pq.Array(&tags),
		&avatar.Downloads,
		&metadata,
		&avatar.CreatedAt,
		&avatar.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if collectionID.Valid {
		avatar.CollectionID = collectionID.UUID
	}
	avatar.Description = description.String
	avatar.Author = author.String
	avatar.License = license.String
	avatar.ThumbnailTxID = thumbnail.String
	if tags == nil {
		tags = []string{}
	}
	avatar.Tags = tags
	avatar.Metadata = metadataValue(metadata)

	return avatar, nil
}
