package eventsite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/eringen/eventsite/content"
)

// Store wraps a SQLite database holding posts and the media library.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL allows readers during the admin's writes; the busy timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrations are applied in order; a duplicate column means the migration
// already ran.
var migrations = []string{
	`ALTER TABLE posts ADD COLUMN is_legacy INTEGER NOT NULL DEFAULT 0;`,
	`ALTER TABLE posts ADD COLUMN cover_image TEXT;`,
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    event_date TEXT NOT NULL,
    blocks TEXT NOT NULL DEFAULT '[]',
    published INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);
CREATE INDEX IF NOT EXISTS posts_event_date ON posts (event_date);
CREATE TABLE IF NOT EXISTS uploads (
    key TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    original_name TEXT NOT NULL,
    content_type TEXT NOT NULL,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
				continue
			}
			return err
		}
	}
	return nil
}

const postColumns = `slug, title, location, event_date, cover_image, blocks, is_legacy, published, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var cover sql.NullString
	var blocks string
	var legacy, published int
	if err := row.Scan(&p.Slug, &p.Title, &p.Location, &p.EventDate, &cover, &blocks, &legacy, &published, &p.CreatedAt); err != nil {
		return Post{}, err
	}
	p.CoverImage = cover.String
	p.Blocks = content.Decode(blocks)
	p.IsLegacy = legacy == 1
	p.Published = published == 1
	p.Link = "/events/" + p.Slug + "/"
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns all published posts, newest event first. If location is
// non-empty, results are filtered to that location (case-insensitive).
func (s *Store) ListPosts(location string) ([]Post, error) {
	if location == "" {
		return s.queryPosts(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY event_date DESC, slug`)
	}
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE published = 1 AND lower(location) = lower(?) ORDER BY event_date DESC, slug`,
		strings.TrimSpace(location))
}

// ListLocations returns the sorted, distinct locations of published posts.
func (s *Store) ListLocations() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT location FROM posts WHERE published = 1 AND location != '' ORDER BY location`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		result = append(result, loc)
	}
	return result, rows.Err()
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug))
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
}

// ListAllPosts returns every post (published and drafts), newest event first.
func (s *Store) ListAllPosts() ([]Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY event_date DESC, slug`)
}

// SavePost upserts a post. The block document replaces the stored one as a
// whole; created_at is kept on update.
func (s *Store) SavePost(p Post) error {
	return s.writePost(context.Background(), p, `
INSERT INTO posts (slug, title, location, event_date, cover_image, blocks, is_legacy, published)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
    title = excluded.title,
    location = excluded.location,
    event_date = excluded.event_date,
    cover_image = excluded.cover_image,
    blocks = excluded.blocks,
    is_legacy = excluded.is_legacy,
    published = excluded.published`)
}

// InsertPost inserts a new post and fails if the slug is taken.
func (s *Store) InsertPost(ctx context.Context, p Post) error {
	return s.writePost(ctx, p, `
INSERT INTO posts (slug, title, location, event_date, cover_image, blocks, is_legacy, published)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
}

func (s *Store) writePost(ctx context.Context, p Post, query string) error {
	blocks, err := content.Encode(p.Blocks)
	if err != nil {
		return err
	}
	var cover sql.NullString
	if p.CoverImage != "" {
		cover = sql.NullString{String: p.CoverImage, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, query,
		p.Slug, p.Title, strings.TrimSpace(p.Location), p.EventDate, cover, blocks, boolInt(p.IsLegacy), boolInt(p.Published))
	if err != nil {
		return fmt.Errorf("save post %q: %w", p.Slug, err)
	}
	return nil
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// SlugExists reports whether any post, published or not, uses slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM posts WHERE slug = ?`, slug).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteLegacyPosts removes every post that came from the legacy import.
func (s *Store) DeleteLegacyPosts(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE is_legacy = 1`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeletePostsByTitle removes every post whose title equals one of titles.
func (s *Store) DeletePostsByTitle(ctx context.Context, titles []string) (int64, error) {
	const chunk = 500
	var total int64
	for start := 0; start < len(titles); start += chunk {
		end := min(start+chunk, len(titles))
		part := titles[start:end]
		args := make([]any, len(part))
		for i, t := range part {
			args[i] = t
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(part)), ",")
		res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE title IN (`+placeholders+`)`, args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// SaveMedia records an uploaded file.
func (s *Store) SaveMedia(m MediaFile) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO uploads (key, url, original_name, content_type, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Key, m.URL, m.OriginalName, m.ContentType, m.Width, m.Height, m.Size, m.UploadedAt)
	return err
}

// ListMedia returns all uploads, newest first.
func (s *Store) ListMedia() ([]MediaFile, error) {
	rows, err := s.db.Query(`SELECT key, url, original_name, content_type, width, height, size, uploaded_at FROM uploads ORDER BY uploaded_at DESC, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []MediaFile
	for rows.Next() {
		var m MediaFile
		if err := rows.Scan(&m.Key, &m.URL, &m.OriginalName, &m.ContentType, &m.Width, &m.Height, &m.Size, &m.UploadedAt); err != nil {
			return nil, err
		}
		files = append(files, m)
	}
	return files, rows.Err()
}

// DeleteMedia removes the record of an upload.
func (s *Store) DeleteMedia(key string) error {
	_, err := s.db.Exec(`DELETE FROM uploads WHERE key = ?`, key)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
