package settings

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Persisted setting keys. Values are integers; boolean settings store 0/1.
const (
	// KeyWelcomeMessage toggles the welcome-home announcement.
	KeyWelcomeMessage = "welcomeMessage"
	// KeyAlarmState is the authoritative last known armed state (0/1).
	KeyAlarmState = "AlarmState"
	// KeyPinCode is the numeric disarm pin.
	KeyPinCode = "pinCode"
	// KeyMQTTMessage toggles status publishing.
	KeyMQTTMessage = "mqttMessage"
	// KeyTelegramID is the chat recipient for notifications.
	KeyTelegramID = "telegramID"
	// KeyTelegramReminder toggles the welcome-home chat reminder.
	KeyTelegramReminder = "telegramReminder"
)

// Repository defines persistence operations for the settings table.
// The table is read wholesale at boot and updated one key at a time.
type Repository interface {
	LoadAll(ctx context.Context) (map[string]int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, value int64) error
}

// ErrNotFound is returned when a key has never been stored.
var ErrNotFound = errors.New("setting not found")

// schema creates the single key-value table on open.
const schema = `CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
) STRICT;`

// SQLiteRepository persists settings in a single-file SQLite database.
// A write failure is surfaced to the caller: armed state must never
// silently diverge from the persisted record.
type SQLiteRepository struct {
	// conn is the single database connection; SQLite serializes writes
	// anyway and the daemon is effectively single-threaded per tick.
	conn *sqlite.Conn
	// mu protects conn, which is not safe for concurrent use.
	mu sync.Mutex
}

// Open creates or opens the settings database at the provided path and
// ensures the schema exists.
func Open(path string) (*SQLiteRepository, error) {
	conn, err := sqlite.OpenConn(filepath.Clean(path), sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}

	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("create settings schema: %w", err)
	}

	return &SQLiteRepository{conn: conn}, nil
}

// Close releases the database connection.
func (r *SQLiteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}

	err := r.conn.Close()
	r.conn = nil

	return err
}

// LoadAll reads the whole settings table.
func (r *SQLiteRepository) LoadAll(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make(map[string]int64)

	err := sqlitex.Execute(r.conn, `SELECT key, value FROM settings;`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			values[stmt.ColumnText(0)] = stmt.ColumnInt64(1)

			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return values, nil
}

// Get returns the stored value for key, or ErrNotFound.
func (r *SQLiteRepository) Get(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		value int64
		found bool
	)

	err := sqlitex.Execute(r.conn, `SELECT value FROM settings WHERE key = ?;`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnInt64(0)
			found = true

			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("get setting %q: %w", key, err)
	}

	if !found {
		return 0, ErrNotFound
	}

	return value, nil
}

// Set stores the value for key, replacing any previous value.
// At-most-once: there is no retry, the caller learns whether it succeeded.
func (r *SQLiteRepository) Set(_ context.Context, key string, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := sqlitex.Execute(
		r.conn,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value;`,
		&sqlitex.ExecOptions{Args: []any{key, value}},
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}

	return nil
}
