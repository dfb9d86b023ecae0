package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// CallSessionRepo persists and loads call sessions using a minimal pgx pool.
type CallSessionRepo struct{ Pool PgxPool }

// NewCallSessionRepo constructs a CallSessionRepo with the given pool.
func NewCallSessionRepo(p PgxPool) *CallSessionRepo { return &CallSessionRepo{Pool: p} }

const sessionColumns = `id, telephony_call_id, COALESCE(voice_agent_call_id,''), candidate_id, job_id,
	COALESCE(initiated_by,''), phone_number, COALESCE(script,''), status,
	results_score, COALESCE(results_notice_period,''), COALESCE(results_current_compensation,''),
	COALESCE(results_expected_compensation,''), COALESCE(results_summary,''), COALESCE(results_transcript,''),
	created_at, updated_at`

// Create inserts a new call session and returns its id.
// The unique constraint on telephony_call_id enforces one session per call.
func (r *CallSessionRepo) Create(ctx domain.Context, s domain.CallSession) (string, error) {
	tracer := otel.Tracer("repo.call_sessions")
	ctx, span := tracer.Start(ctx, "call_sessions.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "call_sessions"),
	)
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO call_sessions (id, telephony_call_id, voice_agent_call_id, candidate_id, job_id, initiated_by, phone_number, script, status, created_at, updated_at)
	VALUES ($1,$2,NULLIF($3,''),$4,$5,NULLIF($6,''),$7,NULLIF($8,''),$9,$10,$11)`
	now := time.Now().UTC()
	_, err := r.Pool.Exec(ctx, q, id, s.TelephonyCallID, s.VoiceAgentCallID, s.CandidateID, s.JobID, s.InitiatedBy, s.PhoneNumber, s.Script, s.Status, now, now)
	if err != nil {
		return "", fmt.Errorf("op=call_session.create: %w", err)
	}
	return id, nil
}

// GetByTelephonyCallID loads a session by the telephony provider's call id.
func (r *CallSessionRepo) GetByTelephonyCallID(ctx domain.Context, callID string) (domain.CallSession, error) {
	tracer := otel.Tracer("repo.call_sessions")
	ctx, span := tracer.Start(ctx, "call_sessions.GetByTelephonyCallID")
	defer span.End()
	q := `SELECT ` + sessionColumns + ` FROM call_sessions WHERE telephony_call_id=$1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, callID), "call_session.get_by_call_id")
}

// LatestByCandidate loads the most recently created session for a candidate.
func (r *CallSessionRepo) LatestByCandidate(ctx domain.Context, candidateID string) (domain.CallSession, error) {
	tracer := otel.Tracer("repo.call_sessions")
	ctx, span := tracer.Start(ctx, "call_sessions.LatestByCandidate")
	defer span.End()
	q := `SELECT ` + sessionColumns + ` FROM call_sessions WHERE candidate_id=$1 ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, candidateID), "call_session.latest_by_candidate")
}

// Finalize moves a session to a terminal status unless it already completed.
// The WHERE guard makes webhook replays and out-of-order terminal events
// no-ops; the boolean result reports whether the transition was applied.
func (r *CallSessionRepo) Finalize(ctx domain.Context, telephonyCallID string, status domain.CallStatus, res *domain.ScreeningResults) (bool, error) {
	tracer := otel.Tracer("repo.call_sessions")
	ctx, span := tracer.Start(ctx, "call_sessions.Finalize")
	defer span.End()
	if !status.IsTerminal() {
		return false, fmt.Errorf("op=call_session.finalize: status %q not terminal: %w", status, domain.ErrInvalidArgument)
	}
	var score *int
	var notice, current, expected, summary, transcript *string
	if res != nil {
		score = &res.Score
		notice, current, expected = &res.NoticePeriod, &res.CurrentCompensation, &res.ExpectedCompensation
		summary, transcript = &res.Summary, &res.Transcript
	}
	q := `UPDATE call_sessions SET status=$2,
		results_score=COALESCE($3, results_score),
		results_notice_period=COALESCE($4, results_notice_period),
		results_current_compensation=COALESCE($5, results_current_compensation),
		results_expected_compensation=COALESCE($6, results_expected_compensation),
		results_summary=COALESCE($7, results_summary),
		results_transcript=COALESCE($8, results_transcript),
		updated_at=$9
	WHERE telephony_call_id=$1 AND status <> 'completed'`
	tag, err := r.Pool.Exec(ctx, q, telephonyCallID, status, score, notice, current, expected, summary, transcript, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("op=call_session.finalize: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListStale returns initiated sessions created before olderThan.
func (r *CallSessionRepo) ListStale(ctx domain.Context, olderThan time.Time, limit int) ([]domain.CallSession, error) {
	tracer := otel.Tracer("repo.call_sessions")
	ctx, span := tracer.Start(ctx, "call_sessions.ListStale")
	defer span.End()
	q := `SELECT ` + sessionColumns + ` FROM call_sessions WHERE status='initiated' AND created_at < $1 ORDER BY created_at ASC LIMIT $2`
	rows, err := r.Pool.Query(ctx, q, olderThan.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("op=call_session.list_stale: %w", err)
	}
	defer rows.Close()
	var out []domain.CallSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("op=call_session.list_stale: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=call_session.list_stale: %w", err)
	}
	return out, nil
}

func (r *CallSessionRepo) scanOne(row pgx.Row, op string) (domain.CallSession, error) {
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CallSession{}, fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
		}
		return domain.CallSession{}, fmt.Errorf("op=%s: %w", op, err)
	}
	return s, nil
}

func scanSession(row pgx.Row) (domain.CallSession, error) {
	var s domain.CallSession
	var score *int
	var notice, current, expected, summary, transcript string
	if err := row.Scan(&s.ID, &s.TelephonyCallID, &s.VoiceAgentCallID, &s.CandidateID, &s.JobID,
		&s.InitiatedBy, &s.PhoneNumber, &s.Script, &s.Status,
		&score, &notice, &current, &expected, &summary, &transcript,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.CallSession{}, err
	}
	if score != nil {
		s.Results = &domain.ScreeningResults{
			Score:                *score,
			NoticePeriod:         notice,
			CurrentCompensation:  current,
			ExpectedCompensation: expected,
			Summary:              summary,
			Transcript:           transcript,
		}
	}
	return s, nil
}
