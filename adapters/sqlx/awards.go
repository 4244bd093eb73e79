package sqlx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"badgekit/core"
	"badgekit/engine"

	"github.com/jmoiron/sqlx"

	// database drivers selected via Config.Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL connection configuration.
type Config struct {
	Driver          Driver        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// AwardStore implements engine.AwardStore on a SQL database. The scope_key
// column carries the badge's uniqueness key and a unique index on it is the
// atomic insert-if-absent guard: a losing racer's insert affects zero rows,
// it never fails and never duplicates.
type AwardStore struct {
	db     *sqlx.DB
	driver Driver
}

// New opens a connection pool and verifies it.
func New(cfg Config) (*AwardStore, error) {
	db, err := sqlx.Connect(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return &AwardStore{db: db, driver: cfg.Driver}, nil
}

// NewWithDB wraps an existing database handle (useful for testing).
func NewWithDB(db *sqlx.DB, driver Driver) *AwardStore {
	return &AwardStore{db: db, driver: driver}
}

// Close closes the underlying pool.
func (s *AwardStore) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS awards (
	badge      VARCHAR(64)  NOT NULL,
	recipient  VARCHAR(128) NOT NULL,
	content    VARCHAR(128),
	scope_key  VARCHAR(255) NOT NULL,
	granted_at TIMESTAMP    NOT NULL,
	CONSTRAINT awards_scope_key UNIQUE (scope_key)
)`

const recipientIndex = `CREATE INDEX IF NOT EXISTS awards_by_recipient ON awards (badge, recipient)`

// EnsureSchema creates the awards table and its indexes.
func (s *AwardStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create awards table: %w", err)
	}
	if s.driver == DriverPostgres {
		if _, err := s.db.ExecContext(ctx, recipientIndex); err != nil {
			return fmt.Errorf("failed to create awards index: %w", err)
		}
	}
	return nil
}

func scopeKey(badge core.BadgeKey, recipient core.UserID, content *core.ContentRef) string {
	if content != nil {
		return fmt.Sprintf("%s|c|%s", badge, *content)
	}
	return fmt.Sprintf("%s|u|%s", badge, recipient)
}

// InsertIfAbsent records the award unless its scope key is already present.
func (s *AwardStore) InsertIfAbsent(ctx context.Context, badge core.BadgeKey, recipient core.UserID, content *core.ContentRef) (bool, error) {
	var contentVal sql.NullString
	if content != nil {
		contentVal = sql.NullString{String: string(*content), Valid: true}
	}

	query := `INSERT INTO awards (badge, recipient, content, scope_key, granted_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT (scope_key) DO NOTHING`
	if s.driver == DriverMySQL {
		query = `INSERT IGNORE INTO awards (badge, recipient, content, scope_key, granted_at)
			VALUES (?, ?, ?, ?, ?)`
	}
	query = s.db.Rebind(query)

	res, err := s.db.ExecContext(ctx, query,
		badge, recipient, contentVal, scopeKey(badge, recipient, content), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert award: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

// Count returns the recipient's award count for the badge.
func (s *AwardStore) Count(ctx context.Context, badge core.BadgeKey, recipient core.UserID) (int, error) {
	query := s.db.Rebind(`SELECT COUNT(*) FROM awards WHERE badge = ? AND recipient = ?`)
	var n int
	if err := s.db.GetContext(ctx, &n, query, badge, recipient); err != nil {
		return 0, fmt.Errorf("failed to count awards: %w", err)
	}
	return n, nil
}

var _ engine.AwardStore = (*AwardStore)(nil)
