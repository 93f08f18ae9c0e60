package filter

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"news_alert/internal/model"
	"news_alert/internal/trigger"
)

func titles(stories []model.Story) []string {
	var out []string
	for _, s := range stories {
		out = append(out, s.Title)
	}
	return out
}

func TestStories(t *testing.T) {
	pub := time.Date(2024, time.January, 2, 9, 30, 0, 0, trigger.ReferenceZone)
	stories := []model.Story{
		model.NewStory("1", "Big Market News", "Shares rallied", "https://example.com/1", pub),
		model.NewStory("2", "Weather", "Rain all week", "https://example.com/2", pub),
		model.NewStory("3", "Market weather report", "Stocks cool off", "https://example.com/3", pub),
		model.NewStory("4", "Sports", "Market for players heats up", "https://example.com/4", pub),
	}

	tests := []struct {
		name     string
		triggers []trigger.Trigger
		want     []string
	}{
		{
			name:     "single title trigger",
			triggers: []trigger.Trigger{trigger.NewTitle("market")},
			want:     []string{"Big Market News", "Market weather report"},
		},
		{
			name:     "no triggers matches nothing",
			triggers: nil,
			want:     nil,
		},
		{
			name: "story matching two triggers appears once in input order",
			triggers: []trigger.Trigger{
				trigger.NewTitle("weather"),
				trigger.NewTitle("market"),
			},
			want: []string{"Big Market News", "Weather", "Market weather report"},
		},
		{
			name: "title or description",
			triggers: []trigger.Trigger{
				trigger.NewOr(trigger.NewTitle("market"), trigger.NewDescription("market")),
			},
			want: []string{"Big Market News", "Market weather report", "Sports"},
		},
		{
			name:     "nothing fires",
			triggers: []trigger.Trigger{trigger.NewTitle("election")},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stories(stories, tt.triggers)
			if diff := cmp.Diff(tt.want, titles(got)); diff != "" {
				t.Errorf("Stories() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoriesEndToEnd(t *testing.T) {
	stories := []model.Story{
		{Title: "Big Market News"},
		{Title: "Weather"},
	}
	got := Stories(stories, []trigger.Trigger{trigger.NewTitle("market")})
	if diff := cmp.Diff([]model.Story{stories[0]}, got); diff != "" {
		t.Errorf("Stories() mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch(t *testing.T) {
	s := model.Story{Title: "Election results", Description: "Polls closed early"}

	tests := []struct {
		name     string
		triggers []trigger.Trigger
		want     bool
	}{
		{name: "empty", triggers: nil, want: false},
		{name: "one fires", triggers: []trigger.Trigger{trigger.NewTitle("sports"), trigger.NewDescription("polls")}, want: true},
		{name: "none fire", triggers: []trigger.Trigger{trigger.NewTitle("sports")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Match(s, tt.triggers)); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
