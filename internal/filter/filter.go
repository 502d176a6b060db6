package filter

import (
	"strings"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

// TitleAndAgeFilter matches jobs whose title contains any of the include
// keywords, none of the exclude keywords, and that were posted within maxAge.
// Matching is case-insensitive. Empty keyword lists are treated as "match all";
// a zero maxAge disables the age check.
type TitleAndAgeFilter struct {
	include []string
	exclude []string
	maxAge  time.Duration
	now     func() time.Time
}

// NewTitleAndAgeFilter returns a filter over titles and posting age.
func NewTitleAndAgeFilter(include, exclude []string, maxAge time.Duration) *TitleAndAgeFilter {
	return &TitleAndAgeFilter{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Match reports whether job passes all configured checks.
func (f *TitleAndAgeFilter) Match(job model.Job) bool {
	title := strings.ToLower(job.Title)

	if len(f.include) > 0 && !containsAny(title, f.include) {
		return false
	}
	if containsAny(title, f.exclude) {
		return false
	}

	if f.maxAge > 0 && !job.PostedAt.IsZero() {
		if f.now().Sub(job.PostedAt) > f.maxAge {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
