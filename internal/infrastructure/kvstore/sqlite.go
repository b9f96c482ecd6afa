package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"rivalwatch/internal/ports"
)

const dbFileName = "cache.db"

// SQLiteStore persists cache entries in a local SQLite file so the serving
// layer survives restarts with its cache intact.
type SQLiteStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ByteStore = (*SQLiteStore)(nil)

// OpenSQLite creates the cache directory if missing and opens the store.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if dir == "" {
		dir = ".rivalwatch"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared", filepath.Join(dir, dbFileName))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	store := &SQLiteStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	const ddl = `CREATE TABLE IF NOT EXISTS cache_entries (
        grp          TEXT NOT NULL,
        key          TEXT NOT NULL,
        content_type TEXT NOT NULL DEFAULT '',
        body         BLOB NOT NULL,
        cached_at    TEXT NOT NULL,
        PRIMARY KEY (grp, key)
    )`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("migrate cache db: %w", err)
	}
	return nil
}

// Get returns the entry stored under group/key, if any.
func (s *SQLiteStore) Get(ctx context.Context, group, key string) (ports.CacheEntry, bool, error) {
	query, args, err := s.builder.
		Select("content_type", "body", "cached_at").
		From("cache_entries").
		Where(sq.Eq{"grp": group, "key": key}).
		ToSql()
	if err != nil {
		return ports.CacheEntry{}, false, fmt.Errorf("build select: %w", err)
	}

	var entry ports.CacheEntry
	var cachedAt string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&entry.ContentType, &entry.Body, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.CacheEntry{}, false, nil
	}
	if err != nil {
		return ports.CacheEntry{}, false, fmt.Errorf("query entry: %w", err)
	}

	if parsed, perr := time.Parse(time.RFC3339Nano, cachedAt); perr == nil {
		entry.CachedAt = parsed
	}
	return entry, true, nil
}

// Put upserts the entry under group/key.
func (s *SQLiteStore) Put(ctx context.Context, group, key string, entry ports.CacheEntry) error {
	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now().UTC()
	}

	query, args, err := s.builder.
		Insert("cache_entries").
		Columns("grp", "key", "content_type", "body", "cached_at").
		Values(group, key, entry.ContentType, entry.Body, cachedAt.Format(time.RFC3339Nano)).
		Suffix(`ON CONFLICT (grp, key) DO UPDATE SET
            content_type = excluded.content_type,
            body = excluded.body,
            cached_at = excluded.cached_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// DeleteGroup drops every entry of one resource-set group.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, group string) error {
	query, args, err := s.builder.
		Delete("cache_entries").
		Where(sq.Eq{"grp": group}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// Groups lists the group names currently holding entries.
func (s *SQLiteStore) Groups(ctx context.Context) ([]string, error) {
	query, args, err := s.builder.
		Select("DISTINCT grp").
		From("cache_entries").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build group select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan group: %w", err)
		}
		names = append(names, name)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return names, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
