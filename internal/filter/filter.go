// Package filter selects the stories that at least one trigger fires on.
package filter

import (
	"github.com/samber/lo"

	"news_alert/internal/model"
	"news_alert/internal/trigger"
)

// Match reports whether any of the triggers fires on the story.
// With no triggers, nothing matches.
func Match(s model.Story, triggers []trigger.Trigger) bool {
	return lo.SomeBy(triggers, func(t trigger.Trigger) bool {
		return t.Evaluate(s)
	})
}

// Stories returns the stories that at least one trigger fires on.
// Input order is preserved and each story appears at most once, however
// many triggers fire on it.
func Stories(stories []model.Story, triggers []trigger.Trigger) []model.Story {
	return lo.Filter(stories, func(s model.Story, _ int) bool {
		return Match(s, triggers)
	})
}
