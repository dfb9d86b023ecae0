package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/voice-screener/internal/adapter/observability"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// StaleCallSweeper finalizes sessions whose terminal webhook never arrived.
// Without it a dropped webhook would leave the candidate flagged in-progress
// forever and the session stuck in initiated.
type StaleCallSweeper struct {
	sessions   domain.CallSessionRepository
	candidates domain.CandidateRepository
	maxCallAge time.Duration
	interval   time.Duration
	batchSize  int
}

func NewStaleCallSweeper(sessions domain.CallSessionRepository, candidates domain.CandidateRepository, maxCallAge, interval time.Duration, batchSize int) *StaleCallSweeper {
	if sessions == nil || candidates == nil {
		return nil
	}
	if maxCallAge <= 0 {
		maxCallAge = 30 * time.Minute
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &StaleCallSweeper{
		sessions:   sessions,
		candidates: candidates,
		maxCallAge: maxCallAge,
		interval:   interval,
		batchSize:  batchSize,
	}
}

func (s *StaleCallSweeper) Run(ctx context.Context) {
	if s == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("stale call sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *StaleCallSweeper) sweepOnce(ctx context.Context) {
	tracer := otel.Tracer("calls.sweeper")
	ctx, span := tracer.Start(ctx, "StaleCallSweeper.sweepOnce")
	defer span.End()

	cutoff := time.Now().UTC().Add(-s.maxCallAge)
	span.SetAttributes(
		attribute.Int("calls.batch_size", s.batchSize),
		attribute.Float64("calls.max_age_seconds", s.maxCallAge.Seconds()),
	)

	stale, err := s.sessions.ListStale(ctx, cutoff, s.batchSize)
	if err != nil {
		span.RecordError(err)
		slog.Error("stale call sweep failed to list sessions", slog.Any("error", err))
		return
	}

	swept := 0
	for _, sess := range stale {
		callCtx, callSpan := tracer.Start(ctx, "StaleCallSweeper.finalize")
		callSpan.SetAttributes(
			attribute.String("call.telephony_id", sess.TelephonyCallID),
			attribute.String("call.candidate_id", sess.CandidateID),
		)

		applied, err := s.sessions.Finalize(callCtx, sess.TelephonyCallID, domain.CallFailed, nil)
		if err != nil {
			callSpan.RecordError(err)
			slog.Error("stale call sweep failed to finalize session",
				slog.String("telephony_call_id", sess.TelephonyCallID), slog.Any("error", err))
			callSpan.End()
			continue
		}
		if applied {
			observability.ReconcileCall(string(domain.CallFailed))
			// A webhook may still land between list and finalize; only the
			// sweep that won the transition releases the candidate.
			if err := s.candidates.SetScreeningInProgress(callCtx, sess.CandidateID, false); err != nil {
				callSpan.RecordError(err)
				slog.Error("stale call sweep failed to release candidate",
					slog.String("candidate_id", sess.CandidateID), slog.Any("error", err))
			} else {
				swept++
			}
		}
		callSpan.End()
	}

	span.SetAttributes(
		attribute.Int("calls.total_listed", len(stale)),
		attribute.Int("calls.total_swept", swept),
	)
	if swept > 0 {
		slog.Info("stale screening calls failed by sweeper", slog.Int("count", swept))
	}
}
