package notifier

import (
	"fmt"
	"log/slog"

	"github.com/amishk599/jobapplicator/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes drafted applications to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each application via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one line per application. It never fails.
func (n *LogNotifier) Notify(apps []model.Application) error {
	for _, a := range apps {
		n.logger.Info("application drafted",
			"title", a.Job.Title,
			"board", a.Job.Board,
			"score", fmt.Sprintf("%.3f", a.Score),
			"url", a.Job.URL,
			"letter", a.LetterPath,
			"followup", a.FollowupAt.Format("2006-01-02"),
		)
	}
	return nil
}
