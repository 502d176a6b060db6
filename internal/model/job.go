package model

import (
	"context"
	"time"
)

// Job is a listing scraped from any board. URL is its identity.
type Job struct {
	Title    string
	URL      string
	PostedAt time.Time // boards without a timestamp use scrape time
	Board    string    // e.g. "Craigslist-newyork", "RemoteOK", "WWR"
	Summary  string    // flattened text of the listing row
}

// ScoredJob pairs a job with its similarity to the applicant profile.
type ScoredJob struct {
	Job
	Score float64
}

// Applicant is the profile the letters are written for.
type Applicant struct {
	Name        string
	TopSkills   []string
	CareerGoals string
	Style       string // optional free-form style guidance
}

// Mood seeds the sampling parameters of the completion call.
type Mood struct {
	Index       float64
	Entropy     float64
	Tag         string // calm | energetic | visionary
	Tone        string
	Temperature float64
	TopP        float64
}

// RequirementMatch maps one job requirement onto an applicant skill.
type RequirementMatch struct {
	Requirement string  `json:"requirement"`
	MappedSkill string  `json:"mapped_skill"`
	Confidence  float64 `json:"confidence"`
}

// Horizon is one forecast point of the future-benefit simulation.
type Horizon struct {
	Horizon       string   `json:"horizon"`
	GrowthScore   float64  `json:"growth_score"`
	WorkLifeScore float64  `json:"work_life_score"`
	CareerCapital []string `json:"career_capital"`
	RippleEffect  string   `json:"ripple_effect"`
}

// FutureSync holds the +6mo / +2yr / +5yr forecasts.
type FutureSync struct {
	Horizons []Horizon `json:"horizons"`
}

// LetterResult is the decoded LLM answer for one job. A non-empty DataError
// means the job must be skipped.
type LetterResult struct {
	ReqMap      []RequirementMatch `json:"req_map,omitempty"`
	CoverLetter string             `json:"cover_letter,omitempty"`
	FutureSync  *FutureSync        `json:"future_sync,omitempty"`
	DataError   string             `json:"data_error,omitempty"`
}

// Application records a drafted cover letter for one job.
type Application struct {
	ID         string
	Job        Job
	Score      float64
	MoodTag    string
	LetterPath string
	CreatedAt  time.Time
	FollowupAt time.Time
}

// JobFetcher fetches job listings from a board.
type JobFetcher interface {
	FetchJobs(ctx context.Context) ([]Job, error)
}

// SeenStore is the seen-cache: job URLs already processed.
type SeenStore interface {
	HasSeen(url string) (bool, error)
	MarkSeen(url string) error
	Cleanup(olderThan time.Duration) error
}

// ApplicationLog keeps the history of drafted applications.
type ApplicationLog interface {
	RecordApplication(app Application) error
	ListApplications() ([]Application, error)
	DueFollowups(now time.Time) ([]Application, error)
}

// Notifier reports drafted applications.
type Notifier interface {
	Notify(apps []Application) error
}

// JobFilter decides whether a job matches the user's criteria.
type JobFilter interface {
	Match(job Job) bool
}

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
