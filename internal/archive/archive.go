package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobapplicator/internal/model"
)

// FollowupDelay is how long after drafting a follow-up is due.
const FollowupDelay = 48 * time.Hour

const followupsFile = "followups.txt"

var nonWord = regexp.MustCompile(`\W+`)

// Archive writes drafted letters and the follow-up list under one directory.
type Archive struct {
	dir string
}

// New creates an Archive rooted at dir. The directory is created on first write.
func New(dir string) *Archive {
	return &Archive{dir: dir}
}

// Dir returns the archive root.
func (a *Archive) Dir() string { return a.dir }

// BaseName is the file stem used for a job's letter and result files:
// date, title with non-word runs replaced by "_" and cut to 40 bytes, board,
// and a short tag derived from the posting URL so same-titled postings on
// one board and day get distinct files.
func BaseName(job model.Job, day time.Time) string {
	title := nonWord.ReplaceAllString(job.Title, "_")
	if len(title) > 40 {
		title = title[:40]
	}
	name := fmt.Sprintf("%s_%s_%s", day.Format("2006-01-02"), title, job.Board)
	if job.URL != "" {
		name += "_" + urlTag(job.URL)
	}
	return name
}

// urlTag is the first 8 hex digits of the name-based UUID of url.
func urlTag(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()[:8]
}

// SaveLetter writes the cover letter as Markdown and returns its path.
func (a *Archive) SaveLetter(job model.Job, letter string, day time.Time) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	path := filepath.Join(a.dir, BaseName(job, day)+".md")
	if err := os.WriteFile(path, []byte(letter), 0o644); err != nil {
		return "", fmt.Errorf("write letter: %w", err)
	}
	return path, nil
}

// SaveResult writes the requirement map and forecast next to the letter.
func (a *Archive) SaveResult(job model.Job, result model.LetterResult, day time.Time) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	data, err := json.MarshalIndent(struct {
		URL        string                   `json:"url"`
		ReqMap     []model.RequirementMatch `json:"req_map"`
		FutureSync *model.FutureSync        `json:"future_sync,omitempty"`
	}{job.URL, result.ReqMap, result.FutureSync}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	path := filepath.Join(a.dir, BaseName(job, day)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}

// ScheduleFollowup prepends "{due}||{url}" to the follow-up list, so the
// newest entry is first. It returns the due time.
func (a *Archive) ScheduleFollowup(url string, now time.Time) (time.Time, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return time.Time{}, fmt.Errorf("create archive dir: %w", err)
	}
	due := now.Add(FollowupDelay)
	path := filepath.Join(a.dir, followupsFile)

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return time.Time{}, fmt.Errorf("read followups: %w", err)
	}
	line := due.Format(time.RFC3339) + "||" + url + "\n"
	if err := os.WriteFile(path, append([]byte(line), existing...), 0o644); err != nil {
		return time.Time{}, fmt.Errorf("write followups: %w", err)
	}
	return due, nil
}

// Followup is one entry of the follow-up list.
type Followup struct {
	Due time.Time
	URL string
}

// Followups reads the follow-up list in file order. Malformed lines are skipped.
func (a *Archive) Followups() ([]Followup, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, followupsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read followups: %w", err)
	}

	var out []Followup
	for _, line := range strings.Split(string(data), "\n") {
		stamp, url, ok := strings.Cut(strings.TrimSpace(line), "||")
		if !ok || url == "" {
			continue
		}
		due, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			continue
		}
		out = append(out, Followup{Due: due, URL: url})
	}
	return out, nil
}

// ReadLetter returns the contents of a saved letter.
func ReadLetter(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read letter: %w", err)
	}
	return string(data), nil
}
