package filter

import (
	"testing"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func job(title string, posted time.Time) model.Job {
	return model.Job{Title: title, PostedAt: posted}
}

func TestTitleAndAgeFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		include   []string
		exclude   []string
		maxAge    time.Duration
		job       model.Job
		wantMatch bool
	}{
		{
			name:      "include keyword matches",
			include:   []string{"python", "backend"},
			job:       job("Senior Python Developer", fixedNow),
			wantMatch: true,
		},
		{
			name:      "no include keyword",
			include:   []string{"devops", "sre"},
			job:       job("Frontend Engineer", fixedNow),
			wantMatch: false,
		},
		{
			name:      "exclude wins over include",
			include:   []string{"developer"},
			exclude:   []string{"SENIOR"},
			job:       job("Senior Python Developer", fixedNow),
			wantMatch: false,
		},
		{
			name:      "empty keyword lists pass all",
			job:       job("Any Role", fixedNow),
			wantMatch: true,
		},
		{
			name:      "too old",
			maxAge:    48 * time.Hour,
			job:       job("Python Developer", fixedNow.Add(-72*time.Hour)),
			wantMatch: false,
		},
		{
			name:      "fresh enough",
			maxAge:    48 * time.Hour,
			job:       job("Python Developer", fixedNow.Add(-24*time.Hour)),
			wantMatch: true,
		},
		{
			name:      "zero posted time passes age check",
			maxAge:    time.Hour,
			job:       job("Python Developer", time.Time{}),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTitleAndAgeFilter(tt.include, tt.exclude, tt.maxAge)
			f.now = func() time.Time { return fixedNow }
			if got := f.Match(tt.job); got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}
