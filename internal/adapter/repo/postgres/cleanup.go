package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CleanupService scrubs transcript text from terminal call sessions past the
// retention window. Session rows themselves are kept as an audit trail;
// candidate and job rows are owned by the wider platform and are never
// touched here.
type CleanupService struct {
	Pool          PgxPool
	RetentionDays int
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(pool PgxPool, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90 // default 90 days
	}
	return &CleanupService{Pool: pool, RetentionDays: retentionDays}
}

// CleanupOldData clears the raw transcript from call sessions older than the
// retention period. Scores, summaries, and the session row stay intact.
func (s *CleanupService) CleanupOldData(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays)

	tag, err := s.Pool.Exec(ctx, `
		UPDATE call_sessions
		SET results_transcript = NULL, updated_at = now()
		WHERE created_at < $1 AND status <> 'initiated' AND results_transcript IS NOT NULL
	`, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup call_sessions: %w", err)
	}

	slog.Info("transcript retention sweep completed",
		slog.Int64("scrubbed_call_sessions", tag.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// RunPeriodic starts a periodic cleanup job.
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour // daily by default
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
