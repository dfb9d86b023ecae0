package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// JobRepo reads job postings and maintains their screening counters.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id string) (domain.Job, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Get")
	defer span.End()
	q := `SELECT id, title, COALESCE(description,''), COALESCE(requirements,''), phone_screened, updated_at FROM jobs WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var j domain.Job
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.PhoneScreened, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
		}
		return domain.Job{}, fmt.Errorf("op=job.get: %w", err)
	}
	return j, nil
}

// IncrementPhoneScreened bumps the job's completed-screening counter.
func (r *JobRepo) IncrementPhoneScreened(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.IncrementPhoneScreened")
	defer span.End()
	q := `UPDATE jobs SET phone_screened=phone_screened+1, updated_at=$2 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=job.increment_phone_screened: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.increment_phone_screened: %w", domain.ErrNotFound)
	}
	return nil
}
