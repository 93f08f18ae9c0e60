package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"news_alert/internal/model"
	"news_alert/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

const feedColumns = `id, chat_id, name, url, interval_minutes, is_active, last_check_at, created_at`

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateFeed inserts a new feed subscription and populates its ID and CreatedAt.
func (s *SQLite) CreateFeed(ctx context.Context, feed *model.Feed) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feeds (chat_id, name, url, interval_minutes, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		feed.ChatID, feed.Name, feed.URL, feed.IntervalMinutes, boolToInt(feed.IsActive), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert feed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	feed.ID = id
	feed.CreatedAt = now
	return nil
}

// GetFeed returns a single feed by its ID.
func (s *SQLite) GetFeed(ctx context.Context, id int64) (*model.Feed, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feed %d: %w", id, ErrNotFound)
	}
	return feed, err
}

// ListFeeds returns all feeds belonging to the given chat.
func (s *SQLite) ListFeeds(ctx context.Context, chatID int64) ([]model.Feed, error) {
	return s.queryFeeds(ctx, `SELECT `+feedColumns+` FROM feeds WHERE chat_id = ? ORDER BY id`, chatID)
}

// ListDueFeeds returns all active feeds whose check interval has elapsed.
func (s *SQLite) ListDueFeeds(ctx context.Context) ([]model.Feed, error) {
	return s.queryFeeds(ctx,
		`SELECT `+feedColumns+` FROM feeds
		 WHERE is_active = 1
		   AND (last_check_at IS NULL
		        OR datetime(last_check_at, '+' || interval_minutes || ' minutes') <= datetime(?))
		 ORDER BY id`,
		time.Now().UTC().Format(timeLayout),
	)
}

func (s *SQLite) queryFeeds(ctx context.Context, query string, args ...any) ([]model.Feed, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var feeds []model.Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, *f)
	}
	return feeds, rows.Err()
}

// UpdateFeed persists changes to an existing feed.
func (s *SQLite) UpdateFeed(ctx context.Context, feed *model.Feed) error {
	var lastCheck sql.NullString
	if feed.LastCheckAt != nil {
		lastCheck = sql.NullString{String: feed.LastCheckAt.UTC().Format(timeLayout), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE feeds SET name = ?, url = ?, interval_minutes = ?, is_active = ?, last_check_at = ?
		 WHERE id = ?`,
		feed.Name, feed.URL, feed.IntervalMinutes, boolToInt(feed.IsActive), lastCheck, feed.ID,
	)
	if err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	return nil
}

// DeleteFeed removes a feed and the record of stories delivered for it.
func (s *SQLite) DeleteFeed(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_items WHERE feed_id = ?`, id); err != nil {
		return fmt.Errorf("delete seen items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return tx.Commit()
}

// MarkSeen records that a story has been delivered for a feed.
func (s *SQLite) MarkSeen(ctx context.Context, feedID int64, guid string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_items (feed_id, guid, seen_at) VALUES (?, ?, ?)`,
		feedID, guid, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// IsSeen checks whether a story has already been delivered for a feed.
func (s *SQLite) IsSeen(ctx context.Context, feedID int64, guid string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM seen_items WHERE feed_id = ? AND guid = ?)`,
		feedID, guid,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return exists == 1, nil
}

// PruneSeen forgets deliveries recorded before the given time and returns
// how many were removed.
func (s *SQLite) PruneSeen(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM seen_items WHERE seen_at < ?`,
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune seen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFeed(row scannable) (*model.Feed, error) {
	var f model.Feed
	var isActive int
	var lastCheck, created sql.NullString
	err := row.Scan(&f.ID, &f.ChatID, &f.Name, &f.URL, &f.IntervalMinutes, &isActive, &lastCheck, &created)
	if err != nil {
		return nil, fmt.Errorf("scan feed: %w", err)
	}
	f.IsActive = isActive == 1
	if lastCheck.Valid {
		t, err := time.Parse(timeLayout, lastCheck.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_check_at: %w", err)
		}
		f.LastCheckAt = &t
	}
	if created.Valid {
		f.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &f, nil
}
