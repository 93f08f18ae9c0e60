// Package model defines the domain types used across the application.
package model

import "time"

// Story is a normalized news feed entry.
// Stories are passed by value and never modified after construction.
type Story struct {
	GUID        string
	Title       string
	Description string
	Link        string
	PubDate     time.Time
}

// NewStory creates a Story. PubDate must already be expressed in the
// reference zone that time triggers are parsed in.
func NewStory(guid, title, description, link string, pubDate time.Time) Story {
	return Story{
		GUID:        guid,
		Title:       title,
		Description: description,
		Link:        link,
		PubDate:     pubDate,
	}
}

// Feed represents an RSS feed subscription.
type Feed struct {
	ID              int64
	ChatID          int64
	Name            string
	URL             string
	IntervalMinutes int
	IsActive        bool
	LastCheckAt     *time.Time
	CreatedAt       time.Time
}
