package stats

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps page views in their own SQLite database so the content
// database stays small and can be backed up on its own.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the statistics database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("stats pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("stats schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			device TEXT NOT NULL,
			referrer TEXT NOT NULL,
			lang TEXT NOT NULL,
			day TEXT NOT NULL,
			ts TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bot_views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			day TEXT NOT NULL,
			ts TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_views_ts ON views(ts);
		CREATE INDEX IF NOT EXISTS idx_views_path ON views(path);
		CREATE INDEX IF NOT EXISTS idx_bot_views_ts ON bot_views(ts);
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

func (s *Store) getSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Salt returns the installation's hashing salt, generating and storing it
// on first use.
func (s *Store) Salt(ctx context.Context) (string, error) {
	salt, err := s.getSetting(ctx, "hash_salt")
	if err != nil {
		return "", fmt.Errorf("read hash salt: %w", err)
	}
	if salt != "" {
		return salt, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(b)
	if err := s.setSetting(ctx, "hash_salt", salt); err != nil {
		return "", fmt.Errorf("store hash salt: %w", err)
	}
	return salt, nil
}

func timestamps(t time.Time) (day, ts string) {
	t = t.UTC()
	return t.Format(time.DateOnly), t.Format(time.RFC3339)
}

// Record stores a page view.
func (s *Store) Record(ctx context.Context, v View) error {
	day, ts := timestamps(v.Timestamp)
	_, err := s.db.ExecContext(ctx, `INSERT INTO views (path, visitor_id, device, referrer, lang, day, ts) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.Path, v.VisitorID, v.Device, v.Referrer, v.Lang, day, ts)
	return err
}

// RecordBot stores a crawler hit. Only path and time are kept.
func (s *Store) RecordBot(ctx context.Context, path string, at time.Time) error {
	day, ts := timestamps(at)
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_views (path, day, ts) VALUES (?, ?, ?)`, path, day, ts)
	return err
}

// Cleanup deletes views older than before and returns how many rows went.
func (s *Store) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	_, cutoff := timestamps(before)
	var total int64
	for _, table := range []string{"views", "bot_views"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE ts < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// Summary aggregates everything recorded since the given time. Lists are
// cut to limit entries; Daily covers every day with at least one view.
func (s *Store) Summary(ctx context.Context, since time.Time, limit int) (Summary, error) {
	_, cutoff := timestamps(since)
	sum := Summary{
		Since:     since.UTC().Format(time.DateOnly),
		TopPaths:  []PathCount{},
		Referrers: []NameCount{},
		Devices:   []NameCount{},
		Daily:     []DayCount{},
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	run(func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT visitor_id || day) FROM views WHERE ts >= ?`, cutoff).
			Scan(&sum.Views, &sum.Visitors)
	})
	run(func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bot_views WHERE ts >= ?`, cutoff).Scan(&sum.BotViews)
	})
	run(func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT path, COUNT(*) AS n, COUNT(DISTINCT visitor_id || day)
			FROM views WHERE ts >= ? GROUP BY path ORDER BY n DESC, path LIMIT ?`, cutoff, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		var out []PathCount
		for rows.Next() {
			var pc PathCount
			if err := rows.Scan(&pc.Path, &pc.Views, &pc.Visitors); err != nil {
				return err
			}
			out = append(out, pc)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if out != nil {
			sum.TopPaths = out
		}
		return nil
	})
	run(func() error {
		out, err := s.countBy(ctx, "referrer", cutoff, limit)
		if err == nil && out != nil {
			sum.Referrers = out
		}
		return err
	})
	run(func() error {
		out, err := s.countBy(ctx, "device", cutoff, limit)
		if err == nil && out != nil {
			sum.Devices = out
		}
		return err
	})
	run(func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT day, COUNT(*) FROM views WHERE ts >= ? GROUP BY day ORDER BY day`, cutoff)
		if err != nil {
			return err
		}
		defer rows.Close()
		var out []DayCount
		for rows.Next() {
			var d DayCount
			if err := rows.Scan(&d.Date, &d.Views); err != nil {
				return err
			}
			out = append(out, d)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if out != nil {
			sum.Daily = out
		}
		return nil
	})

	wg.Wait()
	if firstErr != nil {
		return Summary{}, fmt.Errorf("stats summary: %w", firstErr)
	}
	return sum, nil
}

// countBy groups views by column, which must be a trusted column name.
func (s *Store) countBy(ctx context.Context, column, cutoff string, limit int) ([]NameCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) AS n FROM views WHERE ts >= ?
		GROUP BY `+column+` ORDER BY n DESC, `+column+` LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}
