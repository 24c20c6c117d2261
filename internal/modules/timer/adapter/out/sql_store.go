package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"decktimer/internal/modules/timer/domain"
	apperrors "decktimer/internal/platform/errors"
)

type dialect struct {
	driver string
	ddl    string
	upsert string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	ddl: `
CREATE TABLE IF NOT EXISTS timer_settings (
  instance TEXT PRIMARY KEY,
  round INTEGER NOT NULL,
  hours TEXT NOT NULL,
  minutes TEXT NOT NULL,
  seconds TEXT NOT NULL,
  timer_start_ms INTEGER,
  pause_start_ms INTEGER,
  is_running INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
`,
	upsert: `
INSERT INTO timer_settings (instance, round, hours, minutes, seconds, timer_start_ms, pause_start_ms, is_running, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(instance) DO UPDATE SET
  round=excluded.round,
  hours=excluded.hours,
  minutes=excluded.minutes,
  seconds=excluded.seconds,
  timer_start_ms=excluded.timer_start_ms,
  pause_start_ms=excluded.pause_start_ms,
  is_running=excluded.is_running,
  updated_at=excluded.updated_at;
`,
}

var mysqlDialect = dialect{
	driver: "mysql",
	ddl: `
CREATE TABLE IF NOT EXISTS timer_settings (
  instance VARCHAR(191) NOT NULL PRIMARY KEY,
  round INT NOT NULL,
  hours VARCHAR(16) NOT NULL,
  minutes VARCHAR(16) NOT NULL,
  seconds VARCHAR(16) NOT NULL,
  timer_start_ms BIGINT NULL,
  pause_start_ms BIGINT NULL,
  is_running TINYINT(1) NOT NULL,
  updated_at VARCHAR(40) NOT NULL
);
`,
	upsert: `
INSERT INTO timer_settings (instance, round, hours, minutes, seconds, timer_start_ms, pause_start_ms, is_running, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  round=VALUES(round),
  hours=VALUES(hours),
  minutes=VALUES(minutes),
  seconds=VALUES(seconds),
  timer_start_ms=VALUES(timer_start_ms),
  pause_start_ms=VALUES(pause_start_ms),
  is_running=VALUES(is_running),
  updated_at=VALUES(updated_at);
`,
}

// SQLSettingsStore persists snapshots in a timer_settings table, one row per
// instance.
type SQLSettingsStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func NewSQLiteSettingsStore(dbPath string) (*SQLSettingsStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open(sqliteDialect.driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newSQLSettingsStore(context.Background(), db, sqliteDialect)
}

// NewMySQLSettingsStore connects using a go-sql-driver DSN such as
// user:pass@tcp(host:3306)/deck.
func NewMySQLSettingsStore(ctx context.Context, dsn string) (*SQLSettingsStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: mysql dsn is required", apperrors.ErrInvalidInput)
	}
	db, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return newSQLSettingsStore(ctx, db, mysqlDialect)
}

func newSQLSettingsStore(ctx context.Context, db *sql.DB, d dialect) (*SQLSettingsStore, error) {
	store := &SQLSettingsStore{db: db, dialect: d, now: time.Now}
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create timer_settings table: %w", err)
	}
	return store, nil
}

func (s *SQLSettingsStore) Load(ctx context.Context, instance string) (domain.Snapshot, error) {
	const query = `
SELECT round, hours, minutes, seconds, timer_start_ms, pause_start_ms, is_running
FROM timer_settings WHERE instance = ?`
	var (
		snap        domain.Snapshot
		start, paus sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, query, instance).Scan(
		&snap.Round, &snap.Hours, &snap.Minutes, &snap.Seconds, &start, &paus, &snap.IsRunning,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query settings: %w", err)
	}
	if start.Valid {
		snap.TimerStartMs = &start.Int64
	}
	if paus.Valid {
		snap.PauseStartMs = &paus.Int64
	}
	return snap, nil
}

func (s *SQLSettingsStore) Save(ctx context.Context, instance string, snapshot domain.Snapshot) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert,
		instance,
		snapshot.Round,
		snapshot.Hours,
		snapshot.Minutes,
		snapshot.Seconds,
		nullableMillis(snapshot.TimerStartMs),
		nullableMillis(snapshot.PauseStartMs),
		snapshot.IsRunning,
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *SQLSettingsStore) Close() error {
	return s.db.Close()
}

func nullableMillis(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
