package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/amishk599/jobapplicator/internal/model"
)

// DefaultBatchSize caps the number of inputs per embeddings request.
const DefaultBatchSize = 512

// Ranker orders jobs by embedding similarity to the applicant's skills.
type Ranker struct {
	embedder  model.Embedder
	batchSize int
}

// NewRanker creates a Ranker. batchSize <= 0 uses DefaultBatchSize.
func NewRanker(embedder model.Embedder, batchSize int) *Ranker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Ranker{embedder: embedder, batchSize: batchSize}
}

// ProfileText is the reference text: the skills joined with single spaces.
func ProfileText(skills []string) string {
	return strings.Join(skills, " ")
}

// JobText is the candidate text embedded for a job.
func JobText(j model.Job) string {
	return j.Title + " " + j.Summary
}

// Rank scores every job against the skills and returns them best first.
// Ties keep their input order. No jobs means no embeddings call.
func (r *Ranker) Rank(ctx context.Context, skills []string, jobs []model.Job) ([]model.ScoredJob, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(jobs)+1)
	texts = append(texts, ProfileText(skills))
	for _, j := range jobs {
		texts = append(texts, JobText(j))
	}

	vectors, err := r.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	base := vectors[0]
	scored := make([]model.ScoredJob, len(jobs))
	for i, j := range jobs {
		scored[i] = model.ScoredJob{Job: j, Score: Cosine(base, vectors[i+1])}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	return scored, nil
}

func (r *Ranker) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += r.batchSize {
		end := min(start+r.batchSize, len(texts))
		batch, err := r.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding texts %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding texts %d-%d: got %d vectors for %d inputs", start, end-1, len(batch), end-start)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, empty vectors, and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
