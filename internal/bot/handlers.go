package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"news_alert/internal/fetcher"
	"news_alert/internal/filter"
	"news_alert/internal/metrics"
	"news_alert/internal/model"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to News Alert Bot!

Subscribe to news feeds and get an alert whenever a story matches the configured triggers.

Quick start:
1. /add <url> to subscribe to a feed
2. /triggers to see which rules are active
3. /check <id> to test a feed right away

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Feed management:
/add <url> - subscribe to a feed
/list - show all feeds
/info <id> - feed details
/remove <id> - delete a feed
/rename <id> <name> - rename a feed
/interval <id> <min> - set check interval (1-1440)
/pause <id> - pause checking
/resume <id> - resume checking
/check <id> - check a feed now

Triggers:
/triggers - show the active triggers
/reload - re-read the rule file`)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	url, err := ParseFeedURL(args)
	if err != nil {
		b.reply(chatID, "Usage: /add <url>\n"+err.Error())
		return
	}

	feed, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch feed: %v", err))
		return
	}

	name := feed.Title
	if name == "" {
		name = url
	}

	f := &model.Feed{
		ChatID:          chatID,
		Name:            name,
		URL:             url,
		IntervalMinutes: 15,
		IsActive:        true,
	}
	if err := b.store.CreateFeed(ctx, f); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save feed: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Feed added successfully!\n#%d %s (every %d min)\nURL: %s\n%d trigger(s) active.",
		f.ID, f.Name, f.IntervalMinutes, f.URL, len(b.rules.Current().Triggers)))
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	feeds, err := b.store.ListFeeds(ctx, chatID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, FormatFeedList(feeds))
}

func (b *Bot) handleInfo(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /info <id>")
		return
	}

	feed, ok := b.ownFeed(ctx, chatID, id)
	if !ok {
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatFeedInfo(feed))
	msg.DisableWebPagePreview = true
	feedActions(&msg, feed.ID)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send feed info", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /remove <id>")
		return
	}

	feed, ok := b.ownFeed(ctx, chatID, id)
	if !ok {
		return
	}

	if err := b.store.DeleteFeed(ctx, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Error deleting feed: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d \"%s\" deleted.", id, feed.Name))
}

func (b *Bot) handleRename(ctx context.Context, chatID int64, args string) {
	id, name, err := ParseRenameArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	feed, ok := b.ownFeed(ctx, chatID, id)
	if !ok {
		return
	}

	feed.Name = name
	if err := b.store.UpdateFeed(ctx, feed); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d renamed to \"%s\".", id, name))
}

func (b *Bot) handleInterval(ctx context.Context, chatID int64, args string) {
	id, mins, err := ParseIntervalArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	feed, ok := b.ownFeed(ctx, chatID, id)
	if !ok {
		return
	}

	feed.IntervalMinutes = mins
	if err := b.store.UpdateFeed(ctx, feed); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d interval set to %d min.", id, mins))
}

func (b *Bot) handlePause(ctx context.Context, chatID int64, args string) {
	b.setActive(ctx, chatID, args, false)
}

func (b *Bot) handleResume(ctx context.Context, chatID int64, args string) {
	b.setActive(ctx, chatID, args, true)
}

func (b *Bot) setActive(ctx context.Context, chatID int64, args string, active bool) {
	cmd, verb := "pause", "paused"
	if active {
		cmd, verb = "resume", "resumed"
	}

	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage: /%s <id>", cmd))
		return
	}

	feed, ok := b.ownFeed(ctx, chatID, id)
	if !ok {
		return
	}

	feed.IsActive = active
	if err := b.store.UpdateFeed(ctx, feed); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d \"%s\" %s.", id, feed.Name, verb))
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /check <id>")
		return
	}

	feed, ok := b.ownFeed(ctx, chatID, id)
	if !ok {
		return
	}

	rssFeed, err := b.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch: %v", err))
		return
	}

	stories := fetcher.Stories(rssFeed.Items, b.loc)
	matched := filter.Stories(stories, b.rules.Current().Triggers)
	metrics.StoriesEvaluated.Add(float64(len(stories)))
	metrics.StoriesMatched.Add(float64(len(matched)))

	var fresh []model.Story
	for _, s := range matched {
		seen, err := b.store.IsSeen(ctx, feed.ID, s.GUID)
		if err != nil {
			b.log.Error("check seen", "feed_id", feed.ID, "guid", s.GUID, "error", err)
			continue
		}
		if !seen {
			fresh = append(fresh, s)
		}
	}

	if len(fresh) == 0 {
		b.reply(chatID, fmt.Sprintf("No new matching stories in #%d \"%s\" (%d checked).", feed.ID, feed.Name, len(stories)))
		return
	}

	for _, s := range fresh {
		b.reply(chatID, FormatNotification(feed.Name, s))
		metrics.NotificationsSent.Inc()
		if err := b.store.MarkSeen(ctx, feed.ID, s.GUID); err != nil {
			b.log.Error("mark seen", "feed_id", feed.ID, "guid", s.GUID, "error", err)
		}
	}
	b.reply(chatID, fmt.Sprintf("Found %d new story(ies) in #%d \"%s\".", len(fresh), feed.ID, feed.Name))
}

func (b *Bot) handleTriggers(chatID int64) {
	b.reply(chatID, FormatTriggerList(b.rules.Current(), b.rules.Path()))
}

func (b *Bot) handleReload(chatID int64) {
	err := b.rules.Reload()
	metrics.ObserveReload(err)
	if err != nil {
		b.log.Error("reload rules", "path", b.rules.Path(), "error", err)
		b.reply(chatID, fmt.Sprintf("Reload failed, keeping the previous triggers.\n%v", err))
		return
	}
	rs := b.rules.Current()
	b.log.Info("rules reloaded", "path", b.rules.Path(), "triggers", len(rs.Triggers))
	b.reply(chatID, fmt.Sprintf("Reloaded %d trigger(s) from %s.", len(rs.Triggers), b.rules.Path()))
}

// ownFeed loads a feed and replies "not found" unless it belongs to chatID.
func (b *Bot) ownFeed(ctx context.Context, chatID, id int64) (*model.Feed, bool) {
	feed, err := b.store.GetFeed(ctx, id)
	if err != nil || feed.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Feed #%d not found.", id))
		return nil, false
	}
	return feed, true
}
