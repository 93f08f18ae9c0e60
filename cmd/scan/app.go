package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"news_alert/internal/config"
	"news_alert/internal/fetcher"
	"news_alert/internal/filter"
	"news_alert/internal/model"
	"news_alert/internal/rules"
	"news_alert/internal/trigger"
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "scan",
		Usage:     "Run the trigger rules over news feeds once and print the matching stories",
		ArgsUsage: "<feed-url>...",
		Description: `Loads the rule file, fetches every feed given on the command line
		and prints the stories that at least one selected trigger fires on.
		A story that appears in several feeds is printed once.

		With --check only the rule file is validated and the selected
		triggers are listed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "triggers",
				Aliases: []string{"t"},
				Value:   "./triggers.txt",
				Usage:   "rule file location",
				EnvVars: []string{"TRIGGER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "tz",
				Value:   "EST",
				Usage:   "zone rule times are read in (EST or an IANA name)",
				EnvVars: []string{"TRIGGER_TIMEZONE"},
			},
			&cli.IntFlag{
				Name:    "retries",
				Value:   3,
				Usage:   "retries for a transient fetch failure",
				EnvVars: []string{"FETCH_RETRIES"},
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "validate the rule file and exit",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Action: scan,
	}
}

func scan(ctx *cli.Context) error {
	out := ctx.App.Writer
	log := slog.New(slog.NewTextHandler(ctx.App.ErrWriter, &slog.HandlerOptions{Level: parseLevel(ctx.String("log-level"))}))

	loc, err := (&config.Config{TriggerTimezone: ctx.String("tz")}).Location()
	if err != nil {
		return err
	}

	rs, err := rules.Load(ctx.String("triggers"), loc)
	if err != nil {
		return err
	}
	current := rs.Current()

	if ctx.Bool("check") {
		printRules(out, current, rs.Path())
		return nil
	}

	if ctx.NArg() == 0 {
		return fmt.Errorf("at least one feed URL is required")
	}

	f := fetcher.New(http.DefaultClient)
	f.SetRetry(ctx.Int("retries"), 500*time.Millisecond)

	var matched []model.Story
	feedTitles := make(map[string]string)
	failed := 0
	for _, url := range ctx.Args().Slice() {
		feed, err := f.Fetch(ctx.Context, url)
		if err != nil {
			log.Error("fetch feed", "url", url, "error", err)
			failed++
			continue
		}
		stories := fetcher.Stories(feed.Items, loc)
		hits := filter.Stories(stories, current.Triggers)
		log.Info("feed scanned", "url", url, "stories", len(stories), "matched", len(hits))
		for _, s := range hits {
			if _, ok := feedTitles[s.GUID]; !ok {
				feedTitles[s.GUID] = lo.Ternary(feed.Title != "", feed.Title, url)
			}
		}
		matched = append(matched, hits...)
	}

	for _, s := range lo.UniqBy(matched, func(s model.Story) string { return s.GUID }) {
		printStory(out, feedTitles[s.GUID], s)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d feeds could not be fetched", failed, ctx.NArg())
	}
	return nil
}

func printRules(w io.Writer, rs *trigger.RuleSet, path string) {
	fmt.Fprintf(w, "%s: %d trigger(s) defined, %d selected\n", path, len(rs.Registry), len(rs.Triggers))
	for i, t := range rs.Triggers {
		fmt.Fprintf(w, "  %s: %s\n", rs.Names[i], t)
	}
}

func printStory(w io.Writer, feedTitle string, s model.Story) {
	fmt.Fprintf(w, "[%s] %s\n", feedTitle, s.Title)
	fmt.Fprintf(w, "  %s\n", s.PubDate.Format(trigger.TimeLayout+" MST"))
	if s.Link != "" {
		fmt.Fprintf(w, "  %s\n", s.Link)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
