// Package metadata provides durable storage for per-post view counters,
// named application settings, and uploaded image records. Posts themselves
// live as markdown files on disk; this store holds everything about a post
// that is not authored content.
package metadata

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNegativeViews is returned when an administrative view-count overwrite
// receives a negative value.
var ErrNegativeViews = errors.New("metadata: view count must be non-negative")

// MaintenanceKey is the settings key gating the chat feature.
const MaintenanceKey = "chat_maintenance"

// Store wraps a SQLite database holding post metadata and settings.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema setup. The store is opened once per
// process and shared by all request handlers.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL allows concurrent readers while a writer is active; the busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY, and
	// synchronous=NORMAL is safe under WAL without an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS post_metadata (
    slug TEXT PRIMARY KEY,
    views INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	if err != nil {
		return err
	}
	// Seed the maintenance flag so a fresh store reads as "false" rather
	// than absent.
	_, err = s.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, 'false')`, MaintenanceKey)
	return err
}

// ensureRow lazily creates the counter row for slug with zero views.
func (s *Store) ensureRow(slug string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO post_metadata (slug, views) VALUES (?, 0)`, slug)
	return err
}

// ViewCount returns the current view count for slug, creating the row with
// a count of zero if the slug has never been seen.
func (s *Store) ViewCount(slug string) (int, error) {
	if err := s.ensureRow(slug); err != nil {
		return 0, fmt.Errorf("init views for %q: %w", slug, err)
	}
	var views int
	if err := s.db.QueryRow(`SELECT views FROM post_metadata WHERE slug = ?`, slug).Scan(&views); err != nil {
		return 0, fmt.Errorf("read views for %q: %w", slug, err)
	}
	return views, nil
}

// IncrementViews adds one to the view count for slug, creating the row if
// absent. The increment is a single UPDATE so concurrent calls for the same
// slug never lose updates.
func (s *Store) IncrementViews(slug string) error {
	_, err := s.db.Exec(`
		INSERT INTO post_metadata (slug, views) VALUES (?, 1)
		ON CONFLICT(slug) DO UPDATE SET views = views + 1, updated_at = CURRENT_TIMESTAMP
	`, slug)
	if err != nil {
		return fmt.Errorf("increment views for %q: %w", slug, err)
	}
	return nil
}

// SetViews overwrites the view count for slug. Negative values are rejected
// with ErrNegativeViews.
func (s *Store) SetViews(slug string, views int) error {
	if views < 0 {
		return ErrNegativeViews
	}
	_, err := s.db.Exec(`
		INSERT INTO post_metadata (slug, views) VALUES (?, ?)
		ON CONFLICT(slug) DO UPDATE SET views = excluded.views, updated_at = CURRENT_TIMESTAMP
	`, slug, views)
	if err != nil {
		return fmt.Errorf("set views for %q: %w", slug, err)
	}
	return nil
}

// AllViewCounts returns a snapshot of every counter keyed by slug.
func (s *Store) AllViewCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT slug, views FROM post_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slug string
		var views int
		if err := rows.Scan(&slug, &views); err != nil {
			return nil, err
		}
		counts[slug] = views
	}
	return counts, rows.Err()
}

// Setting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) Setting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// ChatMaintenance reports whether the chat feature is flagged as under
// maintenance. Any value other than "true", including an absent row, reads
// as false.
func (s *Store) ChatMaintenance() (bool, error) {
	val, err := s.Setting(MaintenanceKey)
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

// SetChatMaintenance toggles the chat maintenance flag.
func (s *Store) SetChatMaintenance(enabled bool) error {
	val := "false"
	if enabled {
		val = "true"
	}
	return s.SetSetting(MaintenanceKey, val)
}

// Image is a record of an uploaded, processed image.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// SaveImage stores an image record.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns all image records, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes an image record by filename.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}
