package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobapplicator/internal/archive"
	"github.com/amishk599/jobapplicator/internal/lock"
	"github.com/amishk599/jobapplicator/internal/model"
	"github.com/amishk599/jobapplicator/internal/mood"
)

// DefaultMaxApply is how many top-ranked jobs get a letter per run.
const DefaultMaxApply = 3

// Source is one board to scrape.
type Source struct {
	Name    string
	Fetcher model.JobFetcher
}

// Ranker orders jobs by how well they fit the applicant's skills.
type Ranker interface {
	Rank(ctx context.Context, skills []string, jobs []model.Job) ([]model.ScoredJob, error)
}

// LetterGenerator drafts a cover letter. Failures come back as
// LetterResult.DataError, never as a Go error.
type LetterGenerator interface {
	Generate(ctx context.Context, job model.Job, applicant model.Applicant, mood model.Mood) model.LetterResult
}

// Options configures a Runner.
type Options struct {
	Applicant model.Applicant
	MaxApply  int           // <= 0 uses DefaultMaxApply
	LockPath  string        // empty disables locking
	MoodShots int           // 0 computes the mood exactly
	Retention time.Duration // seen-cache retention, 0 keeps everything
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Sources   []Source
	Seen      model.SeenStore
	Apps      model.ApplicationLog
	Filter    model.JobFilter
	Ranker    Ranker
	Generator LetterGenerator
	Archive   *archive.Archive
	Notifier  model.Notifier
}

// Runner owns one pass of the pipeline:
// lock → mood → gather → dedup/filter → rank → draft → archive → notify.
type Runner struct {
	opts   Options
	deps   Deps
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewRunner creates a runner wired with all its dependencies.
func NewRunner(opts Options, deps Deps, logger *slog.Logger) *Runner {
	if opts.MaxApply <= 0 {
		opts.MaxApply = DefaultMaxApply
	}
	return &Runner{
		opts:   opts,
		deps:   deps,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Sources returns the configured boards.
func (r *Runner) Sources() []Source { return r.deps.Sources }

// Mood returns today's mood.
func (r *Runner) Mood() model.Mood {
	return mood.ForDate(r.now(), r.opts.MoodShots)
}

// Run executes one full cycle. The lock's directory is created if missing.
// A held lock is not an error: the cycle is skipped and Run returns nil.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.LockPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.opts.LockPath), 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		l, err := lock.Acquire(r.opts.LockPath)
		if errors.Is(err, lock.ErrLocked) {
			r.logger.Warn("another run is active, skipping", "lock", r.opts.LockPath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("acquiring lock: %w", err)
		}
		defer func() {
			if err := l.Release(); err != nil {
				r.logger.Error("releasing lock", "error", err)
			}
		}()
	}

	m := r.Mood()
	r.logger.Info("quantum mood",
		"mood", fmt.Sprintf("%.3f", m.Index),
		"entropy", fmt.Sprintf("%.3f", m.Entropy),
		"tag", m.Tag,
	)

	if r.opts.Retention > 0 {
		if err := r.deps.Seen.Cleanup(r.opts.Retention); err != nil {
			r.logger.Warn("seen-cache cleanup failed", "error", err)
		}
	}

	chosen, total, err := r.selectJobs(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		r.logger.Info("no new jobs")
		return nil
	}
	r.logger.Info("ranked jobs", "new", total, "applying", len(chosen))

	apps := r.draft(ctx, chosen, m)

	if len(apps) > 0 {
		if err := r.deps.Notifier.Notify(apps); err != nil {
			r.logger.Error("notify failed", "error", err)
		}
	}
	r.logger.Info("run complete", "drafted", len(apps), "skipped", len(chosen)-len(apps))
	return nil
}

// Check scrapes and ranks like Run but drafts, records and marks nothing.
// It returns every new job, best first.
func (r *Runner) Check(ctx context.Context) ([]model.ScoredJob, error) {
	jobs, err := r.freshJobs(ctx)
	if err != nil {
		return nil, err
	}
	return r.rank(ctx, jobs)
}

// selectJobs returns the top MaxApply ranked jobs and how many new jobs
// were found in total.
func (r *Runner) selectJobs(ctx context.Context) ([]model.ScoredJob, int, error) {
	jobs, err := r.freshJobs(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(jobs) == 0 {
		return nil, 0, nil
	}
	ranked, err := r.rank(ctx, jobs)
	if err != nil {
		return nil, 0, err
	}
	if len(ranked) > r.opts.MaxApply {
		ranked = ranked[:r.opts.MaxApply]
	}
	return ranked, len(jobs), nil
}

func (r *Runner) rank(ctx context.Context, jobs []model.Job) ([]model.ScoredJob, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	ranked, err := r.deps.Ranker.Rank(ctx, r.opts.Applicant.TopSkills, jobs)
	if err != nil {
		return nil, fmt.Errorf("ranking jobs: %w", err)
	}
	return ranked, nil
}

// freshJobs gathers every board and drops seen URLs, repeats within this
// run, and filter rejects. Board order is kept.
func (r *Runner) freshJobs(ctx context.Context) ([]model.Job, error) {
	batches := r.gather(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inRun := make(map[string]bool)
	var fresh []model.Job
	fetched := 0
	for _, batch := range batches {
		fetched += len(batch)
		for _, job := range batch {
			if job.URL == "" || inRun[job.URL] {
				continue
			}
			inRun[job.URL] = true

			seen, err := r.deps.Seen.HasSeen(job.URL)
			if err != nil {
				return nil, fmt.Errorf("checking seen status: %w", err)
			}
			if seen {
				continue
			}
			if r.deps.Filter != nil && !r.deps.Filter.Match(job) {
				continue
			}
			fresh = append(fresh, job)
		}
	}

	r.logger.Info("gathered boards",
		"boards", len(r.deps.Sources),
		"fetched", fetched,
		"new", len(fresh),
	)
	return fresh, nil
}

// gather fetches all boards concurrently. A failing board is logged and
// contributes nothing.
func (r *Runner) gather(ctx context.Context) [][]model.Job {
	batches := make([][]model.Job, len(r.deps.Sources))
	var g errgroup.Group
	for i, src := range r.deps.Sources {
		g.Go(func() error {
			jobs, err := src.Fetcher.FetchJobs(ctx)
			if err != nil {
				r.logger.Warn("board failed, skipping", "board", src.Name, "error", err)
				return nil
			}
			r.logger.Debug("board fetched", "board", src.Name, "jobs", len(jobs))
			batches[i] = jobs
			return nil
		})
	}
	_ = g.Wait()
	return batches
}

// draft generates letters concurrently, then archives each success in
// ranking order. Jobs with a data error are skipped and stay unseen.
func (r *Runner) draft(ctx context.Context, chosen []model.ScoredJob, m model.Mood) []model.Application {
	results := make([]model.LetterResult, len(chosen))
	var g errgroup.Group
	for i, sj := range chosen {
		g.Go(func() error {
			results[i] = r.deps.Generator.Generate(ctx, sj.Job, r.opts.Applicant, m)
			return nil
		})
	}
	_ = g.Wait()

	var apps []model.Application
	for i, sj := range chosen {
		res := results[i]
		if res.DataError != "" {
			r.logger.Warn("letter skipped", "title", sj.Title, "url", sj.URL, "error", res.DataError)
			continue
		}
		app, err := r.archive(sj, res, m)
		if err != nil {
			r.logger.Error("archiving letter failed", "title", sj.Title, "url", sj.URL, "error", err)
			continue
		}
		r.logger.Info("letter drafted", "title", sj.Title, "board", sj.Board, "path", app.LetterPath)
		apps = append(apps, app)
	}
	return apps
}

func (r *Runner) archive(sj model.ScoredJob, res model.LetterResult, m model.Mood) (model.Application, error) {
	now := r.now()
	path, err := r.deps.Archive.SaveLetter(sj.Job, res.CoverLetter, now)
	if err != nil {
		return model.Application{}, err
	}
	if _, err := r.deps.Archive.SaveResult(sj.Job, res, now); err != nil {
		return model.Application{}, err
	}
	due, err := r.deps.Archive.ScheduleFollowup(sj.URL, now)
	if err != nil {
		return model.Application{}, err
	}

	app := model.Application{
		ID:         r.newID(),
		Job:        sj.Job,
		Score:      sj.Score,
		MoodTag:    m.Tag,
		LetterPath: path,
		CreatedAt:  now,
		FollowupAt: due,
	}
	if err := r.deps.Apps.RecordApplication(app); err != nil {
		return model.Application{}, fmt.Errorf("recording application: %w", err)
	}
	if err := r.deps.Seen.MarkSeen(sj.URL); err != nil {
		return model.Application{}, fmt.Errorf("marking seen: %w", err)
	}
	return app, nil
}
