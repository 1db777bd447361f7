package overlay

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite is a Source backed by a local SQLite table, with a write path
// for administrative callers that edit overlay records.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the overlay database at dbPath
// and applies schema migrations. The cache and overlay may share a file;
// their tables do not overlap.
func OpenSQLite(ctx context.Context, dbPath string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("overlay: opening database %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()

		return nil, err
	}

	return &SQLite{db: db, logger: logger}, nil
}

func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("overlay: creating migration sub-filesystem: %w", err)
	}

	// The overlay may share a database file with the cache store, so its
	// migration history needs its own version table.
	store, err := database.NewStore(database.DialectSQLite3, "overlay_schema_version")
	if err != nil {
		return fmt.Errorf("overlay: creating migration store: %w", err)
	}

	provider, err := goose.NewProvider("", db, subFS,
		goose.WithStore(store),
	)
	if err != nil {
		return fmt.Errorf("overlay: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("overlay: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied overlay migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// Lookup returns the records covering ids. IDs without a record are
// simply absent from the result.
func (s *SQLite) Lookup(ctx context.Context, ids []string) (map[string]Record, error) {
	out := make(map[string]Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))

	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, display_name, password, category FROM overlay_records WHERE item_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("overlay: looking up records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			rec Record
		)

		if err := rows.Scan(&id, &rec.DisplayName, &rec.Password, &rec.Category); err != nil {
			return nil, fmt.Errorf("overlay: scanning record: %w", err)
		}

		out[id] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("overlay: reading records: %w", err)
	}

	return out, nil
}

// Put inserts or replaces the record for itemID.
func (s *SQLite) Put(ctx context.Context, itemID string, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO overlay_records (item_id, display_name, password, category) VALUES (?, ?, ?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET
		   display_name = excluded.display_name,
		   password = excluded.password,
		   category = excluded.category`,
		itemID, rec.DisplayName, rec.Password, rec.Category,
	)
	if err != nil {
		return fmt.Errorf("overlay: storing record: %w", err)
	}

	return nil
}

// Delete removes the record for itemID, reporting whether one existed.
func (s *SQLite) Delete(ctx context.Context, itemID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overlay_records WHERE item_id = ?`, itemID)
	if err != nil {
		return false, fmt.Errorf("overlay: deleting record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("overlay: deleting record: %w", err)
	}

	return n > 0, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
