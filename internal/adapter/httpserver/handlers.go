package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/voice-screener/internal/adapter/observability"
	"github.com/fairyhunter13/voice-screener/internal/adapter/telephony/twilio"
	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
	"github.com/fairyhunter13/voice-screener/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Screen     usecase.ScreenService
	Reconcile  usecase.ReconcileService
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
	VoiceCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, screen usecase.ScreenService, reconcile usecase.ReconcileService, dbCheck, redisCheck, voiceCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Screen: screen, Reconcile: reconcile, DBCheck: dbCheck, RedisCheck: redisCheck, VoiceCheck: voiceCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func acceptsJSON(w http.ResponseWriter, r *http.Request) bool {
	a := r.Header.Get("Accept")
	if a == "" || a == "*/*" || strings.Contains(a, "application/json") {
		return true
	}
	writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
		Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a},
	}})
	return false
}

// VoiceScreenHandler starts a screening call for a candidate.
func (s *Server) VoiceScreenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		jobID := chi.URLParam(r, "jobID")
		candidateID := chi.URLParam(r, "candidateID")
		if res := ValidateEntityID("job_id", jobID); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid job id", domain.ErrInvalidArgument), res.Errors)
			return
		}
		if res := ValidateEntityID("candidate_id", candidateID); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid candidate id", domain.ErrInvalidArgument), res.Errors)
			return
		}

		var req struct {
			InitiatedBy string `json:"initiated_by" validate:"omitempty,max=200"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
				return
			}
			if err := getValidator().Struct(req); err != nil {
				writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), nil)
				return
			}
		}

		sess, err := s.Screen.Start(r.Context(), jobID, candidateID, SanitizeString(req.InitiatedBy))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		mode := "live"
		if sess.UsedFallback() {
			mode = "fallback"
		}
		observability.StartCall(mode)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"session_id": sess.ID,
			"call_sid":   sess.TelephonyCallID,
			"fallback":   sess.UsedFallback(),
		})
	}
}

// CallStatusHandler receives telephony status webhooks. Webhooks are always
// acknowledged with HTTP 200: the vendor retries on anything else, and a
// permanent application-side failure must not turn into a retry storm. The
// body's success flag and the logs carry the real outcome.
func (s *Server) CallStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := parseCallEvent(r)
		if err != nil {
			LoggerFrom(r).Warn("unparseable status webhook", "error", err)
			observability.ObserveWebhook("malformed")
			writeJSON(w, http.StatusOK, map[string]any{"success": false})
			return
		}
		s.reconcileEvent(w, r, ev)
	}
}

// CallCompleteHandler receives the voice-agent's end-of-call notification.
// It is folded into the same reconciliation path as a completed status event.
func (s *Server) CallCompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := parseCallEvent(r)
		if err != nil {
			LoggerFrom(r).Warn("unparseable completion webhook", "error", err)
			observability.ObserveWebhook("malformed")
			writeJSON(w, http.StatusOK, map[string]any{"success": false})
			return
		}
		ev.Status = domain.CallCompleted
		s.reconcileEvent(w, r, ev)
	}
}

func (s *Server) reconcileEvent(w http.ResponseWriter, r *http.Request, ev domain.CallEvent) {
	if err := s.Reconcile.HandleStatusEvent(r.Context(), ev); err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrNotFound) {
			outcome = "unknown"
		} else {
			LoggerFrom(r).Error("webhook reconciliation failed",
				"telephony_call_id", ev.CallID, "error", err)
		}
		observability.ObserveWebhook(outcome)
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}
	if ev.Status.IsTerminal() {
		observability.ReconcileCall(string(ev.Status))
	}
	observability.ObserveWebhook("applied")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// parseCallEvent accepts both wire shapes: Twilio's form-encoded payload
// (CallSid/CallStatus) and the JSON body (call_id/status) used by the
// voice-agent vendor and internal tooling.
func parseCallEvent(r *http.Request) (domain.CallEvent, error) {
	ev, err := decodeCallEvent(r)
	if err != nil {
		return domain.CallEvent{}, err
	}
	if vr := ValidateCallStatus(string(ev.Status)); !vr.Valid {
		return domain.CallEvent{}, fmt.Errorf("%w: unrecognized call status %q", domain.ErrInvalidArgument, ev.Status)
	}
	return ev, nil
}

func decodeCallEvent(r *http.Request) (domain.CallEvent, error) {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var body struct {
			CallID   string `json:"call_id"`
			CallSid  string `json:"CallSid"`
			Status   string `json:"status"`
			Duration string `json:"duration"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(&body); err != nil {
			return domain.CallEvent{}, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument)
		}
		id := body.CallID
		if id == "" {
			id = body.CallSid
		}
		if id == "" {
			return domain.CallEvent{}, fmt.Errorf("%w: call id required", domain.ErrInvalidArgument)
		}
		return domain.CallEvent{CallID: id, Status: domain.CallStatus(body.Status), Duration: body.Duration}, nil
	}
	return twilio.ParseStatusCallback(r)
}

// AnalyzeHandler re-runs reconciliation for the candidate's most recent
// screening call. It is the operator escape hatch for lost completion
// webhooks or analysis that should be redone after a model change. When the
// session is already finalized the fresh results are re-applied to the
// candidate without re-counting the screen on the job.
func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		candidateID := chi.URLParam(r, "candidateID")
		if res := ValidateEntityID("candidate_id", candidateID); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid candidate id", domain.ErrInvalidArgument), res.Errors)
			return
		}
		if err := s.Reconcile.Reanalyze(r.Context(), candidateID); err != nil {
			writeError(w, r, err, nil)
			return
		}
		sess, err := s.Screen.LatestScreening(r.Context(), candidateID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"screening": BuildScreeningEnvelope(sess),
		})
	}
}

// ScreeningHandler returns the candidate's most recent screening session.
func (s *Server) ScreeningHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		candidateID := chi.URLParam(r, "candidateID")
		if res := ValidateEntityID("candidate_id", candidateID); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid candidate id", domain.ErrInvalidArgument), res.Errors)
			return
		}
		sess, err := s.Screen.LatestScreening(r.Context(), candidateID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, BuildScreeningEnvelope(sess))
	}
}

// BuildScreeningEnvelope shapes a session for API responses. Results are
// present only for completed sessions.
func BuildScreeningEnvelope(sess domain.CallSession) map[string]any {
	m := map[string]any{
		"id":           sess.ID,
		"candidate_id": sess.CandidateID,
		"job_id":       sess.JobID,
		"call_sid":     sess.TelephonyCallID,
		"status":       string(sess.Status),
		"fallback":     sess.UsedFallback(),
		"created_at":   sess.CreatedAt,
		"updated_at":   sess.UpdatedAt,
	}
	if sess.Status == domain.CallCompleted && sess.Results != nil {
		m["results"] = map[string]any{
			"screening_score":       sess.Results.Score,
			"notice_period":         sess.Results.NoticePeriod,
			"current_compensation":  sess.Results.CurrentCompensation,
			"expected_compensation": sess.Results.ExpectedCompensation,
			"summary":               sess.Results.Summary,
			"transcript":            sess.Results.Transcript,
		}
	}
	return m
}

// ReadyzHandler probes the DB, Redis, and the voice-agent vendor.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 3)
		probe := func(name string, fn func(context.Context) error) {
			if fn == nil {
				return
			}
			if err := fn(ctx); err != nil {
				checks = append(checks, check{Name: name, OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: name, OK: true})
			}
		}
		probe("db", s.DBCheck)
		probe("redis", s.RedisCheck)
		probe("voice_agent", s.VoiceCheck)
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
