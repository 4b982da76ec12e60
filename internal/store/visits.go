// Package store records privacy-preserving page views in SQLite. Visitor
// addresses are never stored: only a salted, truncated hash.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Visit is one recorded page view.
type Visit struct {
	ID        int64     `json:"id"`
	Visitor   string    `json:"visitor"`
	Path      string    `json:"path"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
}

// PathCount is a path with its view count.
type PathCount struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// Stats summarizes recorded visits.
type Stats struct {
	TotalVisits    int64       `json:"total_visits"`
	UniqueVisitors int64       `json:"unique_visitors"`
	VisitsToday    int64       `json:"visits_today"`
	VisitsThisWeek int64       `json:"visits_this_week"`
	TopPaths       []PathCount `json:"top_paths"`
	RecentVisits   []Visit     `json:"recent_visits"`
}

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	visitor TEXT NOT NULL,
	path TEXT NOT NULL,
	user_agent TEXT,
	ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS visits_ts ON visits (ts);`

// Store is a visit store backed by SQLite.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// one connection: SQLite serializes writers anyway, and ":memory:" is per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashVisitor returns a stable pseudonymous id for ip under salt.
func HashVisitor(ip, salt string) string {
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores a visit.
func (s *Store) Record(ctx context.Context, v Visit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (visitor, path, user_agent, ts) VALUES (?, ?, ?, ?)`,
		v.Visitor, v.Path, v.UserAgent, v.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("store: record visit: %w", err)
	}
	return nil
}

// Cleanup deletes visits older than retention and returns how many were
// removed.
func (s *Store) Cleanup(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE ts < ?`, now.Add(-retention).Unix())
	if err != nil {
		return 0, fmt.Errorf("store: cleanup: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.log.Info("removed expired visits", zap.Int64("count", n), zap.Duration("retention", retention))
	}
	return n, nil
}

// Stats summarizes visits relative to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	counts := []struct {
		query string
		args  []any
		dst   *int64
	}{
		{`SELECT COUNT(*) FROM visits`, nil, &stats.TotalVisits},
		{`SELECT COUNT(DISTINCT visitor) FROM visits`, nil, &stats.UniqueVisitors},
		{`SELECT COUNT(*) FROM visits WHERE ts >= ?`, []any{dayStart.Unix()}, &stats.VisitsToday},
		{`SELECT COUNT(*) FROM visits WHERE ts >= ?`, []any{weekAgo.Unix()}, &stats.VisitsThisWeek},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("store: stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM visits
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("store: top paths: %w", err)
	}
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan top path: %w", err)
		}
		stats.TopPaths = append(stats.TopPaths, pc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: top paths: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, visitor, path, COALESCE(user_agent, ''), ts
		FROM visits
		ORDER BY ts DESC, id DESC
		LIMIT 20`)
	if err != nil {
		return nil, fmt.Errorf("store: recent visits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			v  Visit
			ts int64
		)
		if err := rows.Scan(&v.ID, &v.Visitor, &v.Path, &v.UserAgent, &ts); err != nil {
			return nil, fmt.Errorf("store: scan visit: %w", err)
		}
		v.Timestamp = time.Unix(ts, 0).UTC()
		stats.RecentVisits = append(stats.RecentVisits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent visits: %w", err)
	}
	return stats, nil
}
