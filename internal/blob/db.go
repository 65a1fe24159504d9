package blob

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/kns/internal/db"
)

// maxObjectSize caps objects kept in the database.
const maxObjectSize = 10 << 20

// DBStorage keeps objects in the blobs table. Objects are served by the API
// under BaseURL.
type DBStorage struct {
	DB      *db.DB
	BaseURL string
}

// NewDBStorage returns database-backed storage whose public URLs start with baseURL.
func NewDBStorage(d *db.DB, baseURL string) *DBStorage {
	return &DBStorage{DB: d, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Upload stores or replaces an object.
func (s *DBStorage) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) error {
	p, err := CleanPath(objectPath)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxObjectSize+1))
	if err != nil {
		return fmt.Errorf("reading object: %w", err)
	}
	if len(data) > maxObjectSize {
		return fmt.Errorf("object exceeds %d bytes", maxObjectSize)
	}

	_, err = s.DB.ExecContext(ctx, s.DB.Rebind(
		`INSERT INTO blobs (bucket, path, content_type, data, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (bucket, path) DO UPDATE SET content_type = excluded.content_type,
		     data = excluded.data, updated_at = excluded.updated_at`),
		bucket, p, contentType, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing object: %w", err)
	}
	return nil
}

// PublicURL returns the URL the API serves the object from.
func (s *DBStorage) PublicURL(bucket, objectPath string) string {
	return s.BaseURL + "/" + url.PathEscape(bucket) + "/" + escapePath(objectPath)
}

// Get returns an object's data and content type. Returns nil data if the
// object does not exist.
func (s *DBStorage) Get(ctx context.Context, bucket, objectPath string) ([]byte, string, error) {
	p, err := CleanPath(objectPath)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	var contentType string
	err = s.DB.QueryRowContext(ctx, s.DB.Rebind(
		`SELECT data, content_type FROM blobs WHERE bucket = ? AND path = ?`), bucket, p,
	).Scan(&data, &contentType)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting object: %w", err)
	}
	return data, contentType, nil
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
