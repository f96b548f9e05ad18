package crawllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists crawler hits in sqlite.
type Store struct {
	db     *sql.DB
	salt   string
	logger *slog.Logger
}

// Open opens (or creates) the crawl log database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open crawl log: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.initSalt(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS crawl_hits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			ip_hash TEXT NOT NULL DEFAULT '',
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_crawl_hits_timestamp ON crawl_hits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_crawl_hits_bot ON crawl_hits(bot_name);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	return s.SetSetting("schema_version", strconv.Itoa(currentSchemaVersion))
}

// initSalt loads the per-installation salt for IP hashing, creating it on
// first use.
func (s *Store) initSalt() error {
	v, err := s.GetSetting("hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if v == "" {
		if v, err = newSalt(); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		if err := s.SetSetting("hash_salt", v); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	s.salt = v
	return nil
}

// HashIP returns a salted, truncated SHA-256 of ip. Raw addresses are never stored.
func (s *Store) HashIP(ip string) string {
	return hashIP(s.salt, ip)
}

// GetSetting returns a setting value, or "" when it is not set.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Record stores a hit. A zero Timestamp means now.
func (s *Store) Record(ctx context.Context, h Hit) error {
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO crawl_hits
		(bot_name, user_agent, path, query, outcome, ip_hash, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.Bot, h.UserAgent, h.Path, h.Query, string(h.Outcome), h.IPHash, h.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("record crawl hit: %w", err)
	}
	return nil
}

// Recent returns the latest hits, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Hit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bot_name, user_agent, path, query, outcome, ip_hash, timestamp
		FROM crawl_hits ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent hits: %w", err)
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		var outcome string
		if err := rows.Scan(&h.Bot, &h.UserAgent, &h.Path, &h.Query, &outcome, &h.IPHash, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.Outcome = Outcome(outcome)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// topLimit caps the number of rows in each ranked dimension.
const topLimit = 10

// GetStats aggregates hits with timestamps in [from, to).
func (s *Store) GetStats(ctx context.Context, from, to time.Time) (*Stats, error) {
	from, to = from.UTC(), to.UTC()
	stats := &Stats{
		Period:    from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopBots:   []DimensionStat{},
		TopPaths:  []DimensionStat{},
		Outcomes:  []DimensionStat{},
		DailyHits: []DailyCount{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crawl_hits WHERE timestamp >= ? AND timestamp < ?`, from, to).
		Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("count hits: %w", err)
	}

	dims := []struct {
		name   string
		column string
		dst    *[]DimensionStat
	}{
		{"top bots", "bot_name", &stats.TopBots},
		{"top paths", "path", &stats.TopPaths},
		{"outcomes", "outcome", &stats.Outcomes},
	}
	for _, d := range dims {
		res, err := s.dimension(ctx, d.column, from, to)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = res
	}

	rows, err := s.db.QueryContext(ctx, `SELECT substr(timestamp, 1, 10) AS day, COUNT(*)
		FROM crawl_hits WHERE timestamp >= ? AND timestamp < ?
		GROUP BY day ORDER BY day`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily hits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily hits: %w", err)
		}
		stats.DailyHits = append(stats.DailyHits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// dimension ranks the values of column. column is never user input.
func (s *Store) dimension(ctx context.Context, column string, from, to time.Time) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) AS n
		FROM crawl_hits WHERE timestamp >= ? AND timestamp < ?
		GROUP BY `+column+` ORDER BY n DESC, `+column+` LIMIT ?`, from, to, topLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Cleanup removes hits older than retentionDays and reports how many went.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM crawl_hits WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup crawl_hits: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanupScheduler runs Cleanup every interval until the returned stop
// function is called.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := s.Cleanup(context.Background(), retentionDays)
				if err != nil {
					s.logger.Error("crawl log cleanup", "err", err)
					continue
				}
				if n > 0 {
					s.logger.Debug("crawl log cleanup", "removed", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
