package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/jobapplicator/internal/model"
)

// Completer sends one system/user exchange to an LLM and returns its text.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature, topP float64) (string, error)
}

// CoverLetterGenerator drafts a cover letter, requirement map and future
// forecast for one job in a single completion call.
type CoverLetterGenerator struct {
	completer Completer
	system    string
	logger    *slog.Logger
}

// NewCoverLetterGenerator creates a generator. style is optional free-form
// voice guidance appended to the system prompt.
func NewCoverLetterGenerator(completer Completer, style string, logger *slog.Logger) *CoverLetterGenerator {
	return &CoverLetterGenerator{
		completer: completer,
		system:    SystemPrompt(style),
		logger:    logger,
	}
}

type letterPayload struct {
	Job       jobPayload       `json:"job"`
	Applicant applicantPayload `json:"applicant"`
}

type jobPayload struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date"`
	Board   string `json:"board"`
	Summary string `json:"summary"`
}

type applicantPayload struct {
	Name        string      `json:"name"`
	TopSkills   []string    `json:"top_skills"`
	CareerGoals string      `json:"career_goals"`
	BrandTone   string      `json:"brand_tone"`
	QuantumMood moodPayload `json:"quantum_mood"`
}

type moodPayload struct {
	Tag  string  `json:"tag"`
	Temp float64 `json:"temp"`
	TopP float64 `json:"top_p"`
}

// Payload builds the user message for a job.
func Payload(job model.Job, applicant model.Applicant, mood model.Mood) ([]byte, error) {
	skills := applicant.TopSkills
	if skills == nil {
		skills = []string{}
	}
	return json.Marshal(letterPayload{
		Job: jobPayload{
			Title:   job.Title,
			URL:     job.URL,
			Date:    job.PostedAt.Format("2006-01-02"),
			Board:   job.Board,
			Summary: job.Summary,
		},
		Applicant: applicantPayload{
			Name:        applicant.Name,
			TopSkills:   skills,
			CareerGoals: applicant.CareerGoals,
			BrandTone:   mood.Tone,
			QuantumMood: moodPayload{
				Tag:  mood.Tag,
				Temp: mood.Temperature,
				TopP: mood.TopP,
			},
		},
	})
}

// Generate never returns an error. Failed calls and unparseable answers are
// reported through LetterResult.DataError so the caller can skip the job.
func (g *CoverLetterGenerator) Generate(ctx context.Context, job model.Job, applicant model.Applicant, mood model.Mood) model.LetterResult {
	payload, err := Payload(job, applicant, mood)
	if err != nil {
		return parseError(err)
	}

	raw, err := g.completer.Complete(ctx, g.system, string(payload), mood.Temperature, mood.TopP)
	if err != nil {
		return parseError(err)
	}

	result, err := parseLetter(raw)
	if err != nil {
		return parseError(err)
	}
	if g.logger != nil {
		g.logger.Debug("letter drafted", "url", job.URL, "requirements", len(result.ReqMap))
	}
	return result
}

func parseLetter(raw string) (model.LetterResult, error) {
	var result model.LetterResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return model.LetterResult{}, fmt.Errorf("decode letter JSON: %w", err)
	}
	if result.DataError != "" {
		return result, nil
	}
	if strings.TrimSpace(result.CoverLetter) == "" {
		return model.LetterResult{}, fmt.Errorf("response has no cover_letter")
	}
	return result, nil
}

func parseError(err error) model.LetterResult {
	return model.LetterResult{DataError: "parse error: " + err.Error()}
}
