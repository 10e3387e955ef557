package graph

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/reactome/goa-release/internal/models"
)

const sqlPingTimeout = 10 * time.Second

var sqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS instance (
		db_id BIGINT PRIMARY KEY,
		class TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS attribute (
		db_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		ref_db_id BIGINT,
		value TEXT,
		PRIMARY KEY (db_id, name, ordinal)
	)`,
	`CREATE INDEX IF NOT EXISTS attribute_ref_idx ON attribute (ref_db_id, name)`,
}

// SQLStore implements Store on a relational snapshot of the graph: one row per
// instance and one row per attribute value, either a reference (ref_db_id) or a
// scalar (value). The same schema serves SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	backend Backend
	logger  *slog.Logger
}

// NewSQLStore opens a SQLite file or Postgres DSN and verifies the connection.
func NewSQLStore(backend Backend, dsn string, logger *slog.Logger) (*SQLStore, error) {
	var driver string
	switch backend {
	case BackendSQLite:
		driver = "sqlite"
	case BackendPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported sql backend %q", backend)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrStoreAccess, backend, err)
	}
	if backend == BackendSQLite {
		// A single connection keeps ":memory:" databases coherent.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: pinging %s: %w", ErrStoreAccess, backend, err)
	}

	logger.Info("connected to graph snapshot", "backend", backend)
	return &SQLStore{db: db, backend: backend, logger: logger}, nil
}

// rebind rewrites ? placeholders to $N for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.backend != BackendPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EnsureSchema creates the snapshot tables if they do not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqlSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: creating schema: %w", ErrStoreAccess, err)
		}
	}
	return nil
}

// PutInstance inserts or replaces an instance row.
func (s *SQLStore) PutInstance(ctx context.Context, inst models.Instance) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM instance WHERE db_id = ?`), inst.DBID); err != nil {
		return fmt.Errorf("%w: replacing instance %d: %w", ErrStoreAccess, inst.DBID, err)
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO instance (db_id, class, display_name) VALUES (?, ?, ?)`),
		inst.DBID, inst.Class, inst.DisplayName)
	if err != nil {
		return fmt.Errorf("%w: inserting instance %d: %w", ErrStoreAccess, inst.DBID, err)
	}
	return nil
}

// PutAttribute replaces all values of attr on inst inside one transaction.
func (s *SQLStore) PutAttribute(ctx context.Context, inst models.Instance, attr string, values ...models.Value) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStoreAccess, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM attribute WHERE db_id = ? AND name = ?`), inst.DBID, attr); err != nil {
		return fmt.Errorf("%w: clearing %s of %d: %w", ErrStoreAccess, attr, inst.DBID, err)
	}
	insert := s.rebind(`INSERT INTO attribute (db_id, name, ordinal, ref_db_id, value) VALUES (?, ?, ?, ?, ?)`)
	for i, v := range values {
		var ref sql.NullInt64
		var text sql.NullString
		if v.Instance != nil {
			ref = sql.NullInt64{Int64: v.Instance.DBID, Valid: true}
		} else {
			text = sql.NullString{String: v.Text, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insert, inst.DBID, attr, i, ref, text); err != nil {
			return fmt.Errorf("%w: inserting %s[%d] of %d: %w", ErrStoreAccess, attr, i, inst.DBID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStoreAccess, err)
	}
	return nil
}

// FetchInstancesByClass expands class to its known subclasses before querying.
func (s *SQLStore) FetchInstancesByClass(ctx context.Context, class string) ([]models.Instance, error) {
	classes := models.Subclasses(class)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(classes)), ",")
	args := make([]any, len(classes))
	for i, c := range classes {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT db_id, class, display_name FROM instance WHERE class IN (`+placeholders+`) ORDER BY db_id`),
		args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s instances: %w", ErrStoreAccess, class, err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Instance
	for rows.Next() {
		var inst models.Instance
		if err := rows.Scan(&inst.DBID, &inst.Class, &inst.DisplayName); err != nil {
			return nil, fmt.Errorf("%w: scanning instance: %w", ErrStoreAccess, err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating instances: %w", ErrStoreAccess, err)
	}
	return out, nil
}

// AttributeValue returns the first value of attr or nil.
func (s *SQLStore) AttributeValue(ctx context.Context, inst models.Instance, attr string) (*models.Value, error) {
	values, err := s.AttributeValues(ctx, inst, attr)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &values[0], nil
}

// AttributeValues returns all values of attr ordered by ordinal.
func (s *SQLStore) AttributeValues(ctx context.Context, inst models.Instance, attr string) ([]models.Value, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT a.ref_db_id, a.value, i.class, i.display_name
		FROM attribute a
		LEFT JOIN instance i ON i.db_id = a.ref_db_id
		WHERE a.db_id = ? AND a.name = ?
		ORDER BY a.ordinal`), inst.DBID, attr)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s of %d: %w", ErrStoreAccess, attr, inst.DBID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Value
	for rows.Next() {
		var (
			ref         sql.NullInt64
			text        sql.NullString
			class       sql.NullString
			displayName sql.NullString
		)
		if err := rows.Scan(&ref, &text, &class, &displayName); err != nil {
			return nil, fmt.Errorf("%w: scanning attribute: %w", ErrStoreAccess, err)
		}
		if ref.Valid {
			out = append(out, models.Ref(models.Instance{
				DBID:        ref.Int64,
				Class:       class.String,
				DisplayName: displayName.String,
			}))
			continue
		}
		out = append(out, models.Scalar(text.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating attributes: %w", ErrStoreAccess, err)
	}
	return out, nil
}

// Referers returns instances whose attr references inst.
func (s *SQLStore) Referers(ctx context.Context, inst models.Instance, attr string) ([]models.Instance, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT DISTINCT i.db_id, i.class, i.display_name
		FROM attribute a
		JOIN instance i ON i.db_id = a.db_id
		WHERE a.ref_db_id = ? AND a.name = ?
		ORDER BY i.db_id`), inst.DBID, attr)
	if err != nil {
		return nil, fmt.Errorf("%w: reading referers of %d via %s: %w", ErrStoreAccess, inst.DBID, attr, err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Instance
	for rows.Next() {
		var r models.Instance
		if err := rows.Scan(&r.DBID, &r.Class, &r.DisplayName); err != nil {
			return nil, fmt.Errorf("%w: scanning referer: %w", ErrStoreAccess, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating referers: %w", ErrStoreAccess, err)
	}
	return out, nil
}

// Ping verifies the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreAccess, err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
