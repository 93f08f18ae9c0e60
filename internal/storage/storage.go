// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"news_alert/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	CreateFeed(ctx context.Context, feed *model.Feed) error
	GetFeed(ctx context.Context, id int64) (*model.Feed, error)
	ListFeeds(ctx context.Context, chatID int64) ([]model.Feed, error)
	ListDueFeeds(ctx context.Context) ([]model.Feed, error)
	UpdateFeed(ctx context.Context, feed *model.Feed) error
	DeleteFeed(ctx context.Context, id int64) error

	MarkSeen(ctx context.Context, feedID int64, guid string) error
	IsSeen(ctx context.Context, feedID int64, guid string) (bool, error)
	PruneSeen(ctx context.Context, before time.Time) (int64, error)

	Close() error
}
