// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"time"

	"log/slog"

	"github.com/fairyhunter13/voice-screener/internal/domain"
	"github.com/fairyhunter13/voice-screener/pkg/phonenum"
)

// ScreenConfig carries the call-placement settings the orchestrator needs.
type ScreenConfig struct {
	FromNumber        string
	StatusCallbackURL string
	Voice             domain.VoiceConfig
}

// ScreenService orchestrates one outbound screening call end to end:
// candidate lookup, phone normalization, agent acquisition (live first,
// scripted fallback second), dialing, and session persistence.
type ScreenService struct {
	Sessions   domain.CallSessionRepository
	Candidates domain.CandidateRepository
	Jobs       domain.JobRepository
	Live       domain.VoiceAgentProvider
	Fallback   domain.VoiceAgentProvider
	Telephony  domain.TelephonyProvider
	Scripts    ScriptBuilder
	Cfg        ScreenConfig
}

// NewScreenService constructs a ScreenService with its dependencies.
func NewScreenService(
	sessions domain.CallSessionRepository,
	candidates domain.CandidateRepository,
	jobs domain.JobRepository,
	live, fallback domain.VoiceAgentProvider,
	telephony domain.TelephonyProvider,
	scripts ScriptBuilder,
	cfg ScreenConfig,
) ScreenService {
	return ScreenService{
		Sessions:   sessions,
		Candidates: candidates,
		Jobs:       jobs,
		Live:       live,
		Fallback:   fallback,
		Telephony:  telephony,
		Scripts:    scripts,
		Cfg:        cfg,
	}
}

// Start places a screening call for the candidate. The in-progress flag is
// claimed before any vendor call and released again if dialing fails, so a
// candidate can never have two concurrent screenings.
func (s ScreenService) Start(ctx domain.Context, jobID, candidateID, initiatedBy string) (domain.CallSession, error) {
	if jobID == "" || candidateID == "" {
		return domain.CallSession{}, fmt.Errorf("op=screen.start: ids required: %w", domain.ErrInvalidArgument)
	}

	cand, err := s.Candidates.Get(ctx, candidateID)
	if err != nil {
		return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, err)
	}
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.CallSession{}, fmt.Errorf("op=screen.start job=%s: %w", jobID, err)
	}

	if cand.Phone == "" {
		return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, domain.ErrMissingPhone)
	}
	phone, ok := phonenum.Normalize(cand.Phone)
	if !ok {
		return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, domain.ErrInvalidPhone)
	}

	if cand.ScreeningInProgress {
		return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, domain.ErrScreeningInProgress)
	}
	if err := s.Candidates.SetScreeningInProgress(ctx, candidateID, true); err != nil {
		return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, err)
	}

	prompt := s.Scripts.BuildAgentPrompt(job, cand)
	agent, err := s.Live.CreateCallSession(ctx, prompt, s.Cfg.Voice)
	if err != nil {
		slog.Warn("live voice agent unavailable, using scripted call",
			slog.String("candidate_id", candidateID), slog.Any("error", err))
		agent, err = s.Fallback.CreateCallSession(ctx, prompt, s.Cfg.Voice)
		if err != nil {
			s.release(ctx, candidateID)
			return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, err)
		}
	}

	instr := domain.CallInstructions{JoinURL: agent.JoinURL, InlineScript: agent.Script}
	sid, err := s.Telephony.PlaceCall(ctx, phone, s.Cfg.FromNumber, instr, s.Cfg.StatusCallbackURL)
	if err != nil {
		s.release(ctx, candidateID)
		return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, err)
	}

	now := time.Now().UTC()
	sess := domain.CallSession{
		TelephonyCallID:  sid,
		VoiceAgentCallID: agent.CallID,
		CandidateID:      candidateID,
		JobID:            jobID,
		InitiatedBy:      initiatedBy,
		PhoneNumber:      phone,
		Script:           agent.Script,
		Status:           domain.CallInitiated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	id, err := s.Sessions.Create(ctx, sess)
	if err != nil {
		// The call is already ringing; the webhook reconciler will still
		// match on the telephony call id if a retry persists the session.
		s.release(ctx, candidateID)
		return domain.CallSession{}, fmt.Errorf("op=screen.start candidate=%s: %w", candidateID, err)
	}
	sess.ID = id

	slog.Info("screening call started",
		slog.String("session_id", id),
		slog.String("candidate_id", candidateID),
		slog.String("job_id", jobID),
		slog.String("telephony_call_id", sid),
		slog.Bool("fallback", sess.UsedFallback()))
	return sess, nil
}

func (s ScreenService) release(ctx domain.Context, candidateID string) {
	if err := s.Candidates.SetScreeningInProgress(ctx, candidateID, false); err != nil {
		slog.Error("failed to release screening flag",
			slog.String("candidate_id", candidateID), slog.Any("error", err))
	}
}

// LatestScreening returns the most recent screening session for a candidate.
func (s ScreenService) LatestScreening(ctx domain.Context, candidateID string) (domain.CallSession, error) {
	if candidateID == "" {
		return domain.CallSession{}, fmt.Errorf("op=screen.latest: candidate id required: %w", domain.ErrInvalidArgument)
	}
	sess, err := s.Sessions.LatestByCandidate(ctx, candidateID)
	if err != nil {
		return domain.CallSession{}, fmt.Errorf("op=screen.latest candidate=%s: %w", candidateID, err)
	}
	return sess, nil
}
