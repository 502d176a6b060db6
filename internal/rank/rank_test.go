package rank

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/amishk599/jobapplicator/internal/model"
)

// fakeEmbedder returns a canned vector per text and records each call.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   [][]string
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string(nil), texts...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"scaled", []float32{1, 2}, []float32{2, 4}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRank_SortsDescending(t *testing.T) {
	skills := []string{"Go", "Postgres"}
	jobs := []model.Job{
		{Title: "Chef", Summary: "kitchen", URL: "u1"},
		{Title: "Go Dev", Summary: "backend", URL: "u2"},
		{Title: "Data", Summary: "sql", URL: "u3"},
	}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"Go Postgres":    {1, 0},
		"Chef kitchen":   {0, 1},
		"Go Dev backend": {1, 0.1},
		"Data sql":       {1, 1},
	}}

	got, err := NewRanker(emb, 0).Rank(context.Background(), skills, jobs)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	order := []string{got[0].URL, got[1].URL, got[2].URL}
	if order[0] != "u2" || order[1] != "u3" || order[2] != "u1" {
		t.Errorf("order = %v, want [u2 u3 u1]", order)
	}
	if got[0].Score <= got[1].Score || got[1].Score <= got[2].Score {
		t.Errorf("scores not descending: %v %v %v", got[0].Score, got[1].Score, got[2].Score)
	}

	if len(emb.calls) != 1 || len(emb.calls[0]) != 4 || emb.calls[0][0] != "Go Postgres" {
		t.Errorf("expected one call with profile first, got %v", emb.calls)
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	jobs := []model.Job{
		{Title: "A", URL: "a"},
		{Title: "B", URL: "b"},
		{Title: "C", URL: "c"},
	}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"x":  {1, 0},
		"A ": {1, 1},
		"B ": {1, 1},
		"C ": {1, 1},
	}}

	got, err := NewRanker(emb, 0).Rank(context.Background(), []string{"x"}, jobs)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].URL != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].URL, want)
		}
	}
}

func TestRank_EmptyMakesNoCall(t *testing.T) {
	emb := &fakeEmbedder{}
	got, err := NewRanker(emb, 0).Rank(context.Background(), []string{"Go"}, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 0 || len(emb.calls) != 0 {
		t.Errorf("got %v with %d calls, want nothing", got, len(emb.calls))
	}
}

func TestRank_Batches(t *testing.T) {
	jobs := make([]model.Job, 5)
	vectors := map[string][]float32{"p": {1}}
	for i := range jobs {
		jobs[i] = model.Job{Title: string(rune('a' + i))}
		vectors[JobText(jobs[i])] = []float32{1}
	}
	emb := &fakeEmbedder{vectors: vectors}

	if _, err := NewRanker(emb, 2).Rank(context.Background(), []string{"p"}, jobs); err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(emb.calls) != 3 {
		t.Errorf("expected 3 batched calls for 6 texts, got %d", len(emb.calls))
	}
}

func TestRank_EmbedderError(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}
	_, err := NewRanker(emb, 0).Rank(context.Background(), []string{"Go"}, []model.Job{{Title: "x"}})
	if err == nil {
		t.Fatal("expected error from embedder")
	}
}
