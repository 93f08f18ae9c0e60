// Package scheduler runs the poll loop that turns due feeds into alerts.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"news_alert/internal/bot"
	"news_alert/internal/fetcher"
	"news_alert/internal/filter"
	"news_alert/internal/metrics"
	"news_alert/internal/model"
	"news_alert/internal/rules"
	"news_alert/internal/storage"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	pruneEvery       = 24 * time.Hour
)

// Sender is the interface for sending Telegram messages.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Scheduler periodically checks due feeds, runs their stories through the
// active triggers and notifies each feed's chat of stories it has not seen.
type Scheduler struct {
	store     storage.Storage
	fetcher   *fetcher.Fetcher
	rules     *rules.Holder
	loc       *time.Location
	sender    Sender
	log       *slog.Logger
	tick      time.Duration
	sendDelay time.Duration
	retention time.Duration
	lastPrune time.Time
}

// New creates a Scheduler. Story times are normalized into loc before the
// triggers see them.
func New(store storage.Storage, f *fetcher.Fetcher, rs *rules.Holder, loc *time.Location, sender Sender, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:   store,
		fetcher: f,
		rules:   rs,
		loc:     loc,
		sender:  sender,
		log:     log,
		tick:    1 * time.Minute,
		// ~20 messages/sec max for Telegram
		sendDelay: 50 * time.Millisecond,
		retention: defaultRetention,
	}
}

// SetTickInterval overrides the default 1-minute check interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// SetRetention sets how long delivered GUIDs are remembered.
func (s *Scheduler) SetRetention(d time.Duration) {
	s.retention = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) {
	feeds, err := s.store.ListDueFeeds(ctx)
	if err != nil {
		s.log.Error("list due feeds", "error", err)
		return
	}

	for _, feed := range feeds {
		if ctx.Err() != nil {
			return
		}
		s.processFeed(ctx, feed)
	}

	s.pruneSeen(ctx)
}

func (s *Scheduler) processFeed(ctx context.Context, feed model.Feed) {
	s.log.Debug("checking feed", "feed_id", feed.ID, "name", feed.Name)

	metrics.FeedFetches.Inc()
	start := time.Now()
	rssFeed, err := s.fetcher.Fetch(ctx, feed.URL)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FeedFetchErrors.Inc()
		s.log.Error("fetch feed", "feed_id", feed.ID, "url", feed.URL, "error", err)
		s.updateLastCheck(ctx, &feed)
		return
	}

	stories := fetcher.Stories(rssFeed.Items, s.loc)
	matched := filter.Stories(stories, s.rules.Current().Triggers)
	metrics.StoriesEvaluated.Add(float64(len(stories)))
	metrics.StoriesMatched.Add(float64(len(matched)))

	sent := 0
	for _, story := range matched {
		if ctx.Err() != nil {
			return
		}
		seen, err := s.store.IsSeen(ctx, feed.ID, story.GUID)
		if err != nil {
			s.log.Error("check seen", "feed_id", feed.ID, "guid", story.GUID, "error", err)
			continue
		}
		if seen {
			continue
		}

		s.sender.SendMessage(feed.ChatID, bot.FormatNotification(feed.Name, story))
		metrics.NotificationsSent.Inc()
		sent++

		if err := s.store.MarkSeen(ctx, feed.ID, story.GUID); err != nil {
			s.log.Error("mark seen", "feed_id", feed.ID, "guid", story.GUID, "error", err)
		}

		time.Sleep(s.sendDelay)
	}

	s.log.Debug("feed checked", "feed_id", feed.ID, "stories", len(stories), "matched", len(matched))
	if sent > 0 {
		s.log.Info("sent notifications", "feed_id", feed.ID, "name", feed.Name, "count", sent)
	}

	s.updateLastCheck(ctx, &feed)
}

func (s *Scheduler) updateLastCheck(ctx context.Context, feed *model.Feed) {
	now := time.Now().UTC()
	feed.LastCheckAt = &now
	if err := s.store.UpdateFeed(ctx, feed); err != nil {
		s.log.Error("update last check", "feed_id", feed.ID, "error", err)
	}
}

// pruneSeen forgets delivered GUIDs older than the retention window, at most
// once per pruneEvery.
func (s *Scheduler) pruneSeen(ctx context.Context) {
	if s.retention <= 0 || time.Since(s.lastPrune) < pruneEvery {
		return
	}
	n, err := s.store.PruneSeen(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.log.Error("prune seen items", "error", err)
		return
	}
	s.lastPrune = time.Now()
	if n > 0 {
		s.log.Info("pruned seen items", "count", n)
	}
}
