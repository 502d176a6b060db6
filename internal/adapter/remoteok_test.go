package adapter

import (
	"context"
	"net/http"
	"testing"
	"time"
)

const remoteOKPage = `<html><body><table>
<tr class="job">
  <td><a class="preventLink" href="/remote-jobs/123-python-developer-acme"><h2>  Python Developer </h2></a></td>
  <td><time datetime="2026-02-01T10:00:00+00:00">3d</time></td>
</tr>
<tr class="job">
  <td><a class="preventLink" href="/remote-jobs/456-no-time"><h2>No Time</h2></a></td>
</tr>
<tr class="job">
  <td><h2>No Link</h2><time datetime="2026-02-01T10:00:00+00:00"></time></td>
</tr>
</table></body></html>`

func TestRemoteOK_FetchJobs(t *testing.T) {
	var got string
	client := serveHTML(t, http.StatusOK, remoteOKPage, &got)

	a := NewRemoteOKAdapter("python developer", client, "")
	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://remoteok.com/remote-python-developer-jobs" {
		t.Errorf("requested %q", got)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Python Developer" {
		t.Errorf("Title = %q", j.Title)
	}
	if j.URL != "https://remoteok.com/remote-jobs/123-python-developer-acme" {
		t.Errorf("URL = %q", j.URL)
	}
	if j.Board != "RemoteOK" {
		t.Errorf("Board = %q", j.Board)
	}
	if !j.PostedAt.Equal(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("PostedAt = %v", j.PostedAt)
	}
}

func TestParseStamp(t *testing.T) {
	for _, in := range []string{
		"2026-02-01T10:00:00+00:00",
		"2026-02-01T10:00:00Z",
		"2026-02-01T10:00:00",
		"2026-02-01 10:00:00",
		"2026-02-01",
	} {
		if _, err := parseStamp(in); err != nil {
			t.Errorf("parseStamp(%q): %v", in, err)
		}
	}
	if _, err := parseStamp("three days ago"); err == nil {
		t.Error("expected error for free-form text")
	}
}
