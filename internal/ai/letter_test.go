package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

// mockCompleter is a stub Completer that records its last call.
type mockCompleter struct {
	response string
	err      error

	system, user string
	temp, topP   float64
}

func (m *mockCompleter) Complete(_ context.Context, system, user string, temperature, topP float64) (string, error) {
	m.system, m.user, m.temp, m.topP = system, user, temperature, topP
	return m.response, m.err
}

var (
	testJob = model.Job{
		Title:    "Backend Engineer",
		URL:      "https://example.com/jobs/1",
		PostedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Board:    "RemoteOK",
		Summary:  "Go, Postgres, remote",
	}
	testApplicant = model.Applicant{
		Name:        "Sam Doe",
		TopSkills:   []string{"Go", "Postgres"},
		CareerGoals: "Build reliable systems.",
	}
	testMood = model.Mood{Tag: "energetic", Tone: "confident builder", Temperature: 0.6, TopP: 0.94}
)

func TestGenerate_ParsesResult(t *testing.T) {
	m := &mockCompleter{response: `{
		"req_map": [{"requirement": "Go", "mapped_skill": "Go", "confidence": 0.9}],
		"cover_letter": "<!--FINAL--> Dear team",
		"future_sync": {"horizons": [{"horizon": "+6mo", "growth_score": 70, "work_life_score": 60, "career_capital": ["x"], "ripple_effect": "y"}]}
	}`}
	g := NewCoverLetterGenerator(m, "", discardLogger())

	res := g.Generate(context.Background(), testJob, testApplicant, testMood)
	if res.DataError != "" {
		t.Fatalf("unexpected data error: %s", res.DataError)
	}
	if res.CoverLetter != "<!--FINAL--> Dear team" {
		t.Errorf("cover letter = %q", res.CoverLetter)
	}
	if len(res.ReqMap) != 1 || res.ReqMap[0].Confidence != 0.9 {
		t.Errorf("req_map = %+v", res.ReqMap)
	}
	if res.FutureSync == nil || len(res.FutureSync.Horizons) != 1 || res.FutureSync.Horizons[0].Horizon != "+6mo" {
		t.Errorf("future_sync = %+v", res.FutureSync)
	}
	if m.temp != 0.6 || m.topP != 0.94 {
		t.Errorf("sampling = %v/%v, want mood values", m.temp, m.topP)
	}
}

func TestGenerate_SendsPayload(t *testing.T) {
	m := &mockCompleter{response: `{"cover_letter":"ok"}`}
	NewCoverLetterGenerator(m, "", nil).Generate(context.Background(), testJob, testApplicant, testMood)

	var p struct {
		Job struct {
			Title, URL, Date, Board, Summary string
		} `json:"job"`
		Applicant struct {
			Name        string   `json:"name"`
			TopSkills   []string `json:"top_skills"`
			CareerGoals string   `json:"career_goals"`
			BrandTone   string   `json:"brand_tone"`
			QuantumMood struct {
				Tag  string  `json:"tag"`
				Temp float64 `json:"temp"`
				TopP float64 `json:"top_p"`
			} `json:"quantum_mood"`
		} `json:"applicant"`
	}
	if err := json.Unmarshal([]byte(m.user), &p); err != nil {
		t.Fatalf("user message is not JSON: %v", err)
	}
	if p.Job.Date != "2026-10-17" || p.Job.Board != "RemoteOK" || p.Job.URL != testJob.URL {
		t.Errorf("job payload = %+v", p.Job)
	}
	if p.Applicant.Name != "Sam Doe" || len(p.Applicant.TopSkills) != 2 || p.Applicant.BrandTone != "confident builder" {
		t.Errorf("applicant payload = %+v", p.Applicant)
	}
	if p.Applicant.QuantumMood.Tag != "energetic" || p.Applicant.QuantumMood.TopP != 0.94 {
		t.Errorf("mood payload = %+v", p.Applicant.QuantumMood)
	}
}

func TestGenerate_DataErrors(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		err        error
		wantPrefix string
	}{
		{"call fails", "", errors.New("HTTP 500"), "parse error: HTTP 500"},
		{"not json", "Dear hiring manager", nil, "parse error: "},
		{"empty letter", `{"req_map": []}`, nil, "parse error: "},
		{"model reports data error", `{"data_error": "summary missing"}`, nil, "summary missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewCoverLetterGenerator(&mockCompleter{response: tt.response, err: tt.err}, "", nil)
			res := g.Generate(context.Background(), testJob, testApplicant, testMood)
			if !strings.HasPrefix(res.DataError, tt.wantPrefix) {
				t.Errorf("DataError = %q, want prefix %q", res.DataError, tt.wantPrefix)
			}
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	base := SystemPrompt("")
	for _, section := range []string{
		"[action:core_rules]", "[action:input_payload]", "[action:phase_order]",
		"[action:analyst]", "[action:stylist]", "[action:critic]",
		"[action:oracle_future_sync]", "[action:output_schema]",
	} {
		if !strings.Contains(base, section) {
			t.Errorf("prompt missing %s", section)
		}
	}
	if strings.Contains(base, "applicant_style") {
		t.Error("style section present without a style")
	}

	styled := SystemPrompt("  Short sentences. No buzzwords.\n")
	if !strings.HasPrefix(styled, base) || !strings.Contains(styled, "[action:applicant_style]") || !strings.Contains(styled, "No buzzwords.") {
		t.Errorf("style section not appended:\n%s", styled[len(base):])
	}
}

func TestNewCoverLetterGenerator_UsesStyle(t *testing.T) {
	m := &mockCompleter{response: `{"cover_letter":"ok"}`}
	NewCoverLetterGenerator(m, "Warm and direct.", nil).Generate(context.Background(), testJob, testApplicant, testMood)
	if !strings.Contains(m.system, "Warm and direct.") {
		t.Error("system prompt does not carry the style")
	}
}
