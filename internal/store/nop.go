package store

import (
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

// NopStore is used in dry-run mode. It never marks jobs as seen, so every
// job appears new on each run, and it records no history.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(url string) (bool, error) { return false, nil }
func (s *NopStore) MarkSeen(url string) error { return nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error { return nil }
func (s *NopStore) RecordApplication(model.Application) error { return nil }
func (s *NopStore) ListApplications() ([]model.Application, error) {
	return nil, nil
}
func (s *NopStore) DueFollowups(time.Time) ([]model.Application, error) {
	return nil, nil
}
