package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleApp(title, url string) model.Application {
	return model.Application{
		ID: "123",
		Job: model.Job{
			Title:    title,
			URL:      url,
			Board:    "RemoteOK",
			PostedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		Score:      0.87,
		MoodTag:    "energetic",
		LetterPath: "/data/letters/2026-01-15_" + title + "_RemoteOK.md",
		CreatedAt:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		FollowupAt: time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC),
	}
}

func newTestNotifier(srv *httptest.Server) *SlackNotifier {
	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	n.pause = 0
	n.sleep = func(time.Duration) {}
	return n
}

func TestSlackNotifier_EmptyJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)

	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.Application{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleJob(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	app := sampleApp("Backend Engineer", "https://example.com/apply")

	if err := n.Notify([]model.Application{app}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	header := payload.Blocks[0]
	if header.Text.Text != "✉️ Letter drafted: Backend Engineer" {
		t.Errorf("header text = %q", header.Text.Text)
	}

	fields := payload.Blocks[1].Fields
	if fields[0].Text != "*Board:*\nRemoteOK" || fields[1].Text != "*Match:*\n87%" {
		t.Errorf("board/match fields = %q, %q", fields[0].Text, fields[1].Text)
	}

	actionURL := payload.Blocks[4].Elements[0].URL
	if actionURL != "https://example.com/apply" {
		t.Errorf("action URL = %q", actionURL)
	}
}

func TestSlackNotifier_MultipleJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	apps := []model.Application{
		sampleApp("Engineer 1", "https://example.com/1"),
		sampleApp("Engineer 2", "https://example.com/2"),
		sampleApp("Engineer 3", "https://example.com/3"),
	}

	if err := n.Notify(apps); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SlackReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	apps := []model.Application{
		sampleApp("Fails", "https://example.com/a"),
		sampleApp("Fails", "https://example.com/b"),
	}

	err := n.Notify(apps)
	if err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	apps := []model.Application{
		sampleApp("A", "https://example.com/x"),
		sampleApp("B", "https://example.com/y"),
		sampleApp("C", "https://example.com/z"),
	}

	err := n.Notify(apps)
	if err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := calls.Add(1)
		if c == 1 {
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	apps := []model.Application{
		sampleApp("Fails", "https://example.com/a"),
		sampleApp("Succeeds", "https://example.com/b"),
	}

	if err := n.Notify(apps); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := calls.Add(1)
		if c == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	err := n.Notify([]model.Application{sampleApp("Rate Limited Job", "https://example.com/rl")})
	if err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	app := sampleApp("SRE", "https://example.com/sre")
	app.Job.PostedAt = time.Time{} // unknown posting date

	if err := n.Notify([]model.Application{app}); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(payload.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(payload.Blocks))
	}

	if payload.Blocks[0].Type != "header" {
		t.Errorf("block[0] type = %q, want header", payload.Blocks[0].Type)
	}
	if payload.Blocks[1].Type != "section" || len(payload.Blocks[1].Fields) != 2 {
		t.Errorf("block[1] not a 2-field section")
	}
	if payload.Blocks[2].Type != "section" || len(payload.Blocks[2].Fields) != 2 {
		t.Errorf("block[2] not a 2-field section")
	}
	if got := payload.Blocks[2].Fields[0].Text; got != "*Posted:*\nUnknown" {
		t.Errorf("posted field = %q, want Unknown for zero PostedAt", got)
	}
	if got := payload.Blocks[2].Fields[1].Text; got != "*Mood:*\nEnergetic" {
		t.Errorf("mood field = %q", got)
	}
	letter := payload.Blocks[3].Text.Text
	if !strings.Contains(letter, "`2026-01-15_SRE_RemoteOK.md`") || !strings.Contains(letter, "2026-01-17") {
		t.Errorf("letter section = %q", letter)
	}
	if payload.Blocks[4].Type != "actions" || len(payload.Blocks[4].Elements) != 1 {
		t.Errorf("block[4] not a single-element actions block")
	}
	if payload.Blocks[4].Elements[0].Style != "primary" {
		t.Errorf("button style = %q, want primary", payload.Blocks[4].Elements[0].Style)
	}
	if payload.Blocks[5].Type != "divider" {
		t.Errorf("block[5] type = %q, want divider", payload.Blocks[5].Type)
	}
}

func TestSlackNotifier_RetryAfterHonoured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	var slept []time.Duration
	n.sleep = func(d time.Duration) { slept = append(slept, d) }

	if err := n.Notify([]model.Application{sampleApp("Busy", "https://example.com/busy")}); err == nil {
		t.Fatal("expected error when the retry is also rate limited")
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly one retry, got %d calls", calls.Load())
	}
	if len(slept) != 1 || slept[0] != 7*time.Second {
		t.Errorf("slept = %v, want [7s]", slept)
	}
}

func TestSendTestMessage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := SendTestMessage(newTestNotifier(srv)); err != nil {
		t.Fatalf("SendTestMessage: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 HTTP call, got %d", calls.Load())
	}
}
