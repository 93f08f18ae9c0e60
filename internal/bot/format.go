package bot

import (
	"fmt"
	"strings"

	"news_alert/internal/model"
	"news_alert/internal/trigger"
)

const (
	statusActive = "active"
	statusPaused = "paused"

	maxDescriptionRunes = 300
)

// FormatNotification formats a matched story as a Telegram alert.
func FormatNotification(feedName string, s model.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", feedName)
	b.WriteString(s.Title)
	if !s.PubDate.IsZero() {
		fmt.Fprintf(&b, "\n%s", s.PubDate.Format(trigger.TimeLayout+" MST"))
	}
	if s.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(truncate(s.Description, maxDescriptionRunes))
	}
	if s.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Link)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// FormatFeedList formats a list of feeds for display.
func FormatFeedList(feeds []model.Feed) string {
	if len(feeds) == 0 {
		return "You have no feeds yet. Use /add <url> to add one."
	}
	var b strings.Builder
	b.WriteString("Your feeds:\n")
	for _, f := range feeds {
		fmt.Fprintf(&b, "\n#%d %s  (every %d min) [%s]\n", f.ID, f.Name, f.IntervalMinutes, status(f))
	}
	return b.String()
}

// FormatFeedInfo formats detailed information about a single feed.
func FormatFeedInfo(feed *model.Feed) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s [%s]\n", feed.ID, feed.Name, status(*feed))
	fmt.Fprintf(&b, "URL: %s\n", feed.URL)
	fmt.Fprintf(&b, "Interval: every %d min\n", feed.IntervalMinutes)
	if feed.LastCheckAt != nil {
		fmt.Fprintf(&b, "Last check: %s\n", feed.LastCheckAt.Format("2006-01-02 15:04 UTC"))
	} else {
		b.WriteString("Last check: never\n")
	}
	return b.String()
}

// FormatTriggerList lists the selected triggers of a rule set.
func FormatTriggerList(rs *trigger.RuleSet, path string) string {
	if rs == nil || len(rs.Triggers) == 0 {
		return fmt.Sprintf("No triggers selected in %s.\nAdd an ADD line to the rule file and use /reload.", path)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Active triggers (%s):\n", path)
	for i, t := range rs.Triggers {
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, rs.Names[i], t)
	}
	return b.String()
}

func status(f model.Feed) string {
	if f.IsActive {
		return statusActive
	}
	return statusPaused
}
