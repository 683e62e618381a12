package staging

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"telaah/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
// One database file is one session scope; concurrent sessions pointed at
// different state directories never observe each other's staged data.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a staging database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer; a single connection
	// serializes all access through Go's pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Stash(ctx context.Context, feature models.Feature, filename string, rows []models.Row, actions models.ActionMap) error {
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode staged rows: %w", err)
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("encode staged actions: %w", err)
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO staged_results (id, feature, filename, rows_json, staged_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(feature) DO UPDATE SET id=excluded.id, filename=excluded.filename, rows_json=excluded.rows_json, staged_at=excluded.staged_at`,
		newULID(), feature, filename, string(rowsJSON), now,
	)
	if err != nil {
		return fmt.Errorf("stash results: %w", err)
	}

	// A new analysis replaces whatever action map was staged before it,
	// whichever feature staged it.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO staged_actions (slot, actions_json, staged_at) VALUES ('current', ?, ?)
		ON CONFLICT(slot) DO UPDATE SET actions_json=excluded.actions_json, staged_at=excluded.staged_at`,
		string(actionsJSON), now,
	)
	if err != nil {
		return fmt.Errorf("stash actions: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO last_filenames (feature, filename, used_at) VALUES (?, ?, ?)
		ON CONFLICT(feature) DO UPDATE SET filename=excluded.filename, used_at=excluded.used_at`,
		feature, filename, now,
	)
	if err != nil {
		return fmt.Errorf("record filename: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Restore(ctx context.Context, feature models.Feature) ([]models.Row, string, bool, error) {
	var filename, rowsJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT filename, rows_json FROM staged_results WHERE feature = ?", feature,
	).Scan(&filename, &rowsJSON)
	if err == sql.ErrNoRows {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("restore staged results: %w", err)
	}

	var rows []models.Row
	if err := json.Unmarshal([]byte(rowsJSON), &rows); err != nil || len(rows) == 0 {
		// Corrupt or empty staged data: drop it and report absent.
		_ = s.ClearStaged(ctx, feature)
		return nil, "", false, nil
	}
	return rows, filename, true, nil
}

func (s *SQLiteStore) ClearStaged(ctx context.Context, feature models.Feature) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM staged_results WHERE feature = ?", feature)
	if err != nil {
		return fmt.Errorf("clear staged results: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ConsumeActions(ctx context.Context) (models.ActionMap, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var actionsJSON string
	err = tx.QueryRowContext(ctx, "SELECT actions_json FROM staged_actions WHERE slot = 'current'").Scan(&actionsJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read staged actions: %w", err)
	}

	// Read-then-delete: the map is handed out exactly once per session.
	if _, err := tx.ExecContext(ctx, "DELETE FROM staged_actions WHERE slot = 'current'"); err != nil {
		return nil, false, fmt.Errorf("consume staged actions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	var actions models.ActionMap
	if err := json.Unmarshal([]byte(actionsJSON), &actions); err != nil {
		// Corrupt staged state is discarded, not surfaced.
		return nil, false, nil
	}
	if len(actions) == 0 {
		return nil, false, nil
	}
	return actions, true, nil
}

func (s *SQLiteStore) LastFilename(ctx context.Context, feature models.Feature) (string, bool, error) {
	var filename string
	err := s.db.QueryRowContext(ctx,
		"SELECT filename FROM last_filenames WHERE feature = ?", feature,
	).Scan(&filename)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read last filename: %w", err)
	}
	return filename, true, nil
}

func (s *SQLiteStore) SaveView(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO open_view (slot, view_json, opened_at) VALUES ('current', ?, ?)
		ON CONFLICT(slot) DO UPDATE SET view_json=excluded.view_json, opened_at=excluded.opened_at`,
		string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save view: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadView(ctx context.Context) ([]byte, bool, error) {
	var viewJSON string
	err := s.db.QueryRowContext(ctx, "SELECT view_json FROM open_view WHERE slot = 'current'").Scan(&viewJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load view: %w", err)
	}
	if !json.Valid([]byte(viewJSON)) {
		_ = s.ClearView(ctx)
		return nil, false, nil
	}
	return []byte(viewJSON), true, nil
}

func (s *SQLiteStore) ClearView(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM open_view WHERE slot = 'current'")
	if err != nil {
		return fmt.Errorf("clear view: %w", err)
	}
	return nil
}
