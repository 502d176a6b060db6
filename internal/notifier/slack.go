package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts drafted applications to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger

	pause time.Duration
	sleep func(time.Duration)
}

// NewSlackNotifier returns a notifier that posts each application to Slack.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      500 * time.Millisecond,
		sleep:      time.Sleep,
	}
}

// Notify sends each application as a separate Block Kit message.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(apps []model.Application) error {
	if len(apps) == 0 {
		return nil
	}

	failures := 0
	for i, a := range apps {
		if i > 0 {
			s.sleep(s.pause)
		}
		if err := s.sendMessage(buildPayload(a)); err != nil {
			s.logger.Error("slack notification failed", "title", a.Job.Title, "url", a.Job.URL, "error", err)
			failures++
		}
	}

	if failures == len(apps) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(apps)-failures, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		s.sleep(retryAfter)
		if status, _, err = s.post(body); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		return nil
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	return nil
}

func (s *SlackNotifier) post(body []byte) (int, time.Duration, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a sample application to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	app := model.Application{
		ID: "test-001",
		Job: model.Job{
			Title:    "Test Notification: Integration Verified",
			URL:      "https://remoteok.com",
			PostedAt: now,
			Board:    "Test",
			Summary:  "If you can read this, notifications work.",
		},
		Score:      1,
		MoodTag:    "calm",
		LetterPath: "letters/test.md",
		CreatedAt:  now,
		FollowupAt: now.Add(48 * time.Hour),
	}
	return n.Notify([]model.Application{app})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func buildPayload(a model.Application) slackPayload {
	posted := "Unknown"
	if !a.Job.PostedAt.IsZero() {
		posted = a.Job.PostedAt.Format("2006-01-02")
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "✉️ Letter drafted: " + a.Job.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Board:*\n" + a.Job.Board},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Match:*\n%.0f%%", a.Score*100)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Posted:*\n" + posted},
				{Type: "mrkdwn", Text: "*Mood:*\n" + capitalize(a.MoodTag)},
			},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*Letter:* `%s`\n*Follow up:* %s",
				filepath.Base(a.LetterPath), a.FollowupAt.Format("2006-01-02"))},
		},
		{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "Open Posting"},
					URL:   a.Job.URL,
					Style: "primary",
				},
			},
		},
		{Type: "divider"},
	}

	return slackPayload{Blocks: blocks}
}
