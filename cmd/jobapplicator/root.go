package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobapplicator/internal/adapter"
	"github.com/amishk599/jobapplicator/internal/ai"
	"github.com/amishk599/jobapplicator/internal/archive"
	"github.com/amishk599/jobapplicator/internal/config"
	"github.com/amishk599/jobapplicator/internal/filter"
	"github.com/amishk599/jobapplicator/internal/model"
	"github.com/amishk599/jobapplicator/internal/notifier"
	"github.com/amishk599/jobapplicator/internal/pipeline"
	"github.com/amishk599/jobapplicator/internal/rank"
	"github.com/amishk599/jobapplicator/internal/ratelimit"
	"github.com/amishk599/jobapplicator/internal/retry"
	"github.com/amishk599/jobapplicator/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobapplicator",
	Short: "Scrape job boards and draft cover letters for the best matches",
	Long: "jobapplicator scrapes job boards, ranks new listings against your skills " +
		"with embeddings, and drafts cover letters for the top matches with an LLM.",
	// Default to `run` so that `jobapplicator` with no args behaves like a cron job.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBAPPLICATOR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig loads .env files, resolves the config path and parses it.
// Priority: explicit path arg > JOBAPPLICATOR_CONFIG env var > "./config.yaml" > defaults.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, err
	}
	return config.Load(config.Resolve(path))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// board is a scraper that knows its name and listing page.
type board interface {
	model.JobFetcher
	Board() string
	ListURL() string
}

func createBoards(cfg *config.Config, httpClient *http.Client) []board {
	ua := cfg.Scrape.UserAgent
	var boards []board
	if cfg.Boards.Craigslist.Enabled {
		for _, site := range cfg.Boards.Craigslist.Sites {
			boards = append(boards, adapter.NewCraigslistAdapter(site, cfg.Query, httpClient, ua))
		}
	}
	if cfg.Boards.RemoteOK {
		boards = append(boards, adapter.NewRemoteOKAdapter(cfg.Query, httpClient, ua))
	}
	if cfg.Boards.WeWorkRemotely {
		boards = append(boards, adapter.NewWWRAdapter(cfg.Query, httpClient, ua))
	}
	for _, g := range cfg.Boards.Generic {
		boards = append(boards, adapter.NewGenericAdapter(g.DisplayName(), g.URL, httpClient, ua))
	}
	return boards
}

// buildSources wraps every board with site-level pacing and retries.
// Boards on the same registrable domain share one limiter slot.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []pipeline.Source {
	limiter := ratelimit.NewHostRateLimiter(cfg.Scrape.MinDelay)

	var sources []pipeline.Source
	for _, b := range createBoards(cfg, httpClient) {
		var fetcher model.JobFetcher = b
		if u, err := url.Parse(b.ListURL()); err == nil && u.Host != "" {
			fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter, ratelimit.SiteKey(u.Host))
		}
		fetcher = retry.NewRetryFetcher(fetcher, b.Board(), retry.ScrapePolicy, logger)
		sources = append(sources, pipeline.Source{Name: b.Board(), Fetcher: fetcher})
		logger.Debug("registered board", "board", b.Board(), "url", b.ListURL())
	}
	return sources
}

// openStore returns the seen-cache and application log for cfg.Store.Type.
// The JSON store keeps only the seen-cache, so history is not recorded.
func openStore(cfg *config.Config) (model.SeenStore, model.ApplicationLog, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store.Type {
	case "none":
		s := store.NewNopStore()
		return s, s, noop, nil
	case "json":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, nil, err
		}
		s, err := store.NewJSONStore(cfg.StorePath())
		if err != nil {
			return nil, nil, nil, err
		}
		return s, store.NewNopStore(), noop, nil
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, nil, err
		}
		s, err := store.NewSQLiteStore(cfg.StorePath())
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s.Close, nil
	}
}

func setupOpenAI(cfg *config.Config, logger *slog.Logger) *ai.Client {
	httpClient := &http.Client{Timeout: cfg.OpenAI.Timeout}
	return ai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, cfg.OpenAI.EmbeddingModel, httpClient, logger)
}

func applicant(cfg *config.Config) (model.Applicant, error) {
	style, err := cfg.Style()
	if err != nil {
		return model.Applicant{}, err
	}
	return model.Applicant{
		Name:        cfg.Applicant.Name,
		TopSkills:   cfg.Applicant.Skills,
		CareerGoals: cfg.Applicant.CareerGoals,
		Style:       style,
	}, nil
}

// buildRunner wires the whole pipeline. The returned close func releases the store.
func buildRunner(cfg *config.Config, logger *slog.Logger) (*pipeline.Runner, func() error, error) {
	app, err := applicant(cfg)
	if err != nil {
		return nil, nil, err
	}
	seen, apps, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	scrapeClient := &http.Client{Timeout: cfg.Scrape.Timeout}
	openai := setupOpenAI(cfg, logger)

	runner := pipeline.NewRunner(
		pipeline.Options{
			Applicant: app,
			MaxApply:  cfg.MaxApply,
			LockPath:  cfg.LockPath(),
			MoodShots: cfg.Mood.Shots,
			Retention: cfg.Store.Retention,
		},
		pipeline.Deps{
			Sources:   buildSources(cfg, scrapeClient, logger),
			Seen:      seen,
			Apps:      apps,
			Filter:    filter.NewTitleAndAgeFilter(cfg.Filters.TitleKeywords, cfg.Filters.TitleExcludeKeywords, cfg.Filters.MaxAge),
			Ranker:    rank.NewRanker(openai, rank.DefaultBatchSize),
			Generator: ai.NewCoverLetterGenerator(openai, app.Style, logger),
			Archive:   archive.New(cfg.DataDir),
			Notifier:  setupNotifier(cfg, &http.Client{Timeout: cfg.Scrape.Timeout}, logger),
		},
		logger,
	)
	return runner, closeStore, nil
}
