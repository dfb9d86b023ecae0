package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// CandidateRepo reads and updates candidate records owned by the wider
// recruitment platform. It never inserts or deletes rows.
type CandidateRepo struct{ Pool PgxPool }

// NewCandidateRepo constructs a CandidateRepo with the given pool.
func NewCandidateRepo(p PgxPool) *CandidateRepo { return &CandidateRepo{Pool: p} }

// Get loads a candidate by id.
func (r *CandidateRepo) Get(ctx domain.Context, id string) (domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Get")
	defer span.End()
	q := `SELECT id, job_id, name, COALESCE(email,''), COALESCE(phone,''), screening_in_progress,
		screening_score, COALESCE(screening_summary,''), COALESCE(call_transcript,''),
		COALESCE(notice_period,''), COALESCE(current_compensation,''), COALESCE(expected_compensation,''), updated_at
	FROM candidates WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var c domain.Candidate
	if err := row.Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.Phone, &c.ScreeningInProgress,
		&c.ScreeningScore, &c.ScreeningSummary, &c.CallTranscript,
		&c.NoticePeriod, &c.CurrentCompensation, &c.ExpectedCompensation, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", domain.ErrNotFound)
		}
		return domain.Candidate{}, fmt.Errorf("op=candidate.get: %w", err)
	}
	return c, nil
}

// SetScreeningInProgress flips the in-progress flag.
func (r *CandidateRepo) SetScreeningInProgress(ctx domain.Context, id string, inProgress bool) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.SetScreeningInProgress")
	defer span.End()
	q := `UPDATE candidates SET screening_in_progress=$2, updated_at=$3 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, inProgress, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.set_in_progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.set_in_progress: %w", domain.ErrNotFound)
	}
	return nil
}

// ApplyScreeningResults writes the full screening bundle and clears the
// in-progress flag in one statement so readers never observe a half-updated
// candidate.
func (r *CandidateRepo) ApplyScreeningResults(ctx domain.Context, id string, res domain.ScreeningResults) error {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.ApplyScreeningResults")
	defer span.End()
	q := `UPDATE candidates SET screening_score=$2, screening_summary=$3, call_transcript=$4,
		notice_period=$5, current_compensation=$6, expected_compensation=$7,
		screening_in_progress=false, updated_at=$8
	WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, res.Score, res.Summary, res.Transcript,
		res.NoticePeriod, res.CurrentCompensation, res.ExpectedCompensation, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=candidate.apply_results: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=candidate.apply_results: %w", domain.ErrNotFound)
	}
	return nil
}
