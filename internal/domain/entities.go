package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrMissingPhone        = errors.New("candidate has no phone number")
	ErrInvalidPhone        = errors.New("invalid phone number")
	ErrScreeningInProgress = errors.New("screening already in progress")
	ErrVendorUnavailable   = errors.New("vendor unavailable")
	ErrTelephonyFailed     = errors.New("telephony call failed")
	ErrInternal            = errors.New("internal error")
)

// CallStatus enumerates the lifecycle of a screening call session.
// A session starts as initiated and ends in exactly one terminal status.
type CallStatus string

const (
	CallInitiated CallStatus = "initiated"
	CallCompleted CallStatus = "completed"
	CallFailed    CallStatus = "failed"
	CallNoAnswer  CallStatus = "no-answer"
	CallBusy      CallStatus = "busy"
)

// IsTerminal reports whether s ends a session's lifecycle.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallCompleted, CallFailed, CallNoAnswer, CallBusy:
		return true
	}
	return false
}

//go:generate mockery --name=CallSessionRepository --with-expecter --filename=call_session_repository_mock.go
//go:generate mockery --name=CandidateRepository --with-expecter --filename=candidate_repository_mock.go
//go:generate mockery --name=JobRepository --with-expecter --filename=job_repository_mock.go
//go:generate mockery --name=VoiceAgentProvider --with-expecter --filename=voice_agent_provider_mock.go
//go:generate mockery --name=TelephonyProvider --with-expecter --filename=telephony_provider_mock.go
//go:generate mockery --name=AIClient --with-expecter --filename=aiclient_mock.go
//go:generate mockery --name=TranscriptAnalyzer --with-expecter --filename=transcript_analyzer_mock.go

// ScreeningResults holds the structured outcome of an analyzed screening call.
type ScreeningResults struct {
	Score                int
	NoticePeriod         string
	CurrentCompensation  string
	ExpectedCompensation string
	Summary              string
	Transcript           string
}

// CallSession is the persisted record of one outbound screening attempt.
// Invariants: at most one session per telephony call id; Results set iff
// Status == completed; VoiceAgentCallID empty for fallback-script sessions.
type CallSession struct {
	ID               string
	TelephonyCallID  string
	VoiceAgentCallID string
	CandidateID      string
	JobID            string
	InitiatedBy      string
	PhoneNumber      string
	Script           string
	Status           CallStatus
	Results          *ScreeningResults
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UsedFallback reports whether the session was created with the deterministic
// fallback script rather than a live voice-agent session.
func (s CallSession) UsedFallback() bool { return s.VoiceAgentCallID == "" }

// Candidate carries the externally owned candidate fields this subsystem
// reads or mutates. Records are never created or deleted here.
type Candidate struct {
	ID                   string
	JobID                string
	Name                 string
	Email                string
	Phone                string
	ScreeningInProgress  bool
	ScreeningScore       *int
	ScreeningSummary     string
	CallTranscript       string
	NoticePeriod         string
	CurrentCompensation  string
	ExpectedCompensation string
	UpdatedAt            time.Time
}

// Job carries the externally owned job fields this subsystem reads. Only the
// PhoneScreened counter is mutated, once per reconciled completed call.
type Job struct {
	ID            string
	Title         string
	Description   string
	Requirements  string
	PhoneScreened int
	UpdatedAt     time.Time
}

// AgentSessionKind tags an AgentSession variant.
type AgentSessionKind string

const (
	AgentSessionLive     AgentSessionKind = "live"
	AgentSessionFallback AgentSessionKind = "fallback"
)

// AgentSession is the result of acquiring a callee-facing agent: either a
// live vendor session (CallID + JoinURL) or a deterministic fallback script
// (Script). Downstream code branches on Kind only.
type AgentSession struct {
	Kind    AgentSessionKind
	CallID  string
	JoinURL string
	Script  string
}

// CallInstructions is what the telephony provider dials with: a join URL
// bridging call audio to a live agent, or an inline interaction script.
type CallInstructions struct {
	JoinURL      string
	InlineScript string
}

// CallEvent is the normalized webhook envelope. Provider-native field-name
// duality (CallSid vs call_id) is resolved at the HTTP boundary; business
// logic only ever sees this type.
type CallEvent struct {
	CallID   string
	Status   CallStatus
	Duration string
	From     string
	To       string
}

// CallSummary is the post-call material fetched from the voice-agent vendor.
type CallSummary struct {
	Summary    string
	Transcript string
}

// Repositories (ports)

type CallSessionRepository interface {
	Create(ctx Context, s CallSession) (string, error)
	GetByTelephonyCallID(ctx Context, callID string) (CallSession, error)
	LatestByCandidate(ctx Context, candidateID string) (CallSession, error)
	// Finalize transitions a session to a terminal status with optional
	// results, but only when the session is not already completed. It
	// returns false when the guard rejected the transition (replayed or
	// out-of-order webhook).
	Finalize(ctx Context, telephonyCallID string, status CallStatus, res *ScreeningResults) (bool, error)
	ListStale(ctx Context, olderThan time.Time, limit int) ([]CallSession, error)
}

type CandidateRepository interface {
	Get(ctx Context, id string) (Candidate, error)
	SetScreeningInProgress(ctx Context, id string, inProgress bool) error
	// ApplyScreeningResults writes all screening fields and clears the
	// in-progress flag in a single update.
	ApplyScreeningResults(ctx Context, id string, res ScreeningResults) error
}

type JobRepository interface {
	Get(ctx Context, id string) (Job, error)
	IncrementPhoneScreened(ctx Context, id string) error
}

// Providers (ports)

// VoiceAgentProvider abstracts the voice-AI vendor.
type VoiceAgentProvider interface {
	// CreateCallSession provisions an agent for one outbound call. Vendor
	// errors are soft: implementations wrap them in ErrVendorUnavailable so
	// the orchestrator can fall back to a scripted call.
	CreateCallSession(ctx Context, prompt string, cfg VoiceConfig) (AgentSession, error)
	// FetchCallSummary retrieves post-call summary and transcript for a
	// live session. Callers tolerate partial failure.
	FetchCallSummary(ctx Context, externalCallID string) (CallSummary, error)
}

// TelephonyProvider abstracts the vendor that places the PSTN call.
type TelephonyProvider interface {
	PlaceCall(ctx Context, to, from string, instr CallInstructions, statusCallbackURL string) (string, error)
}

// VoiceConfig selects vendor voice/model options for a live agent session.
type VoiceConfig struct {
	Voice       string
	Model       string
	Temperature float64
	Recording   bool
}

// AIClient (port)

type AIClient interface {
	// ChatJSON returns a JSON object matching the prompt's schema instruction;
	// deterministic in mock mode.
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// TranscriptAnalyzer turns a free-text call summary into structured screening
// fields. Implementations never fail: on any analysis error they substitute
// the safe default bundle.
type TranscriptAnalyzer interface {
	Analyze(ctx Context, summary string) ScreeningResults
}

// Context is an alias to allow decoupling from std context in domain
// Adapters and usecases should pass context.Context through

type Context = context.Context
