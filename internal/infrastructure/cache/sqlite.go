package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"PaperCast/internal/domain"
	"PaperCast/internal/ports"
)

// SQLiteStore keeps cache slots in a single SQLite table, partitioned by a
// namespace so the listing snapshot and the article texts can share one
// database file.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
	builder   sq.StatementBuilderType
}

var _ ports.Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database file and ensures the schema.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	schema := `CREATE TABLE IF NOT EXISTS cache_slots (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		PRIMARY KEY (namespace, key)
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure cache schema: %w", err)
	}
	return db, nil
}

// NewSQLiteStore scopes a store to one namespace within db.
func NewSQLiteStore(db *sql.DB, namespace string) *SQLiteStore {
	return &SQLiteStore{
		db:        db,
		namespace: namespace,
		builder:   sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := s.builder.
		Select("value").
		From("cache_slots").
		Where(sq.Eq{"namespace": s.namespace, "key": domain.SafeID(key)}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build get query: %w", err)
	}

	var value []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query cache slot %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := s.builder.
		Insert("cache_slots").
		Columns("namespace", "key", "value").
		Values(s.namespace, domain.SafeID(key), value).
		Suffix("ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build put query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert cache slot %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	query, args, err := s.builder.
		Select("COUNT(1)").
		From("cache_slots").
		Where(sq.Eq{"namespace": s.namespace, "key": domain.SafeID(key)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("query cache slot %s: %w", key, err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	query, args, err := s.builder.
		Select("key").
		From("cache_slots").
		Where(sq.Eq{"namespace": s.namespace}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keys query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan cache key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache keys: %w", err)
	}
	return keys, nil
}
