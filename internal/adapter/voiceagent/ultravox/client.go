// Package ultravox implements the live voice-agent provider against an
// Ultravox-compatible API.
package ultravox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// Limiter gates outbound vendor calls. Implementations fail open.
type Limiter interface {
	Allow(ctx domain.Context, key string) bool
}

// Provider implements domain.VoiceAgentProvider.
type Provider struct {
	cfg     config.Config
	hc      *http.Client
	limiter Limiter
}

// New constructs an Ultravox provider. limiter may be nil.
func New(cfg config.Config, limiter Limiter) *Provider {
	return &Provider{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

type createCallRequest struct {
	SystemPrompt     string      `json:"systemPrompt"`
	Voice            string      `json:"voice,omitempty"`
	Model            string      `json:"model,omitempty"`
	Temperature      float64     `json:"temperature"`
	RecordingEnabled bool        `json:"recordingEnabled"`
	Medium           callMedium  `json:"medium"`
}

type callMedium struct {
	Twilio struct{} `json:"twilio"`
}

type createCallResponse struct {
	CallID  string `json:"callId"`
	JoinURL string `json:"joinUrl"`
}

// CreateCallSession provisions a live agent for one outbound call.
// Every failure is wrapped in ErrVendorUnavailable: the orchestrator treats
// vendor trouble as a signal to fall back, never as a hard stop.
func (p *Provider) CreateCallSession(ctx domain.Context, prompt string, vc domain.VoiceConfig) (domain.AgentSession, error) {
	if p.cfg.UltravoxAPIKey == "" {
		return domain.AgentSession{}, fmt.Errorf("op=ultravox.create_call: api key missing: %w", domain.ErrVendorUnavailable)
	}
	if p.limiter != nil && !p.limiter.Allow(ctx, "ultravox") {
		slog.Warn("voice-agent call throttled", slog.String("vendor", "ultravox"))
		return domain.AgentSession{}, fmt.Errorf("op=ultravox.create_call: throttled: %w", domain.ErrVendorUnavailable)
	}

	body := createCallRequest{
		SystemPrompt:     prompt,
		Voice:            vc.Voice,
		Model:            vc.Model,
		Temperature:      vc.Temperature,
		RecordingEnabled: vc.Recording,
	}
	b, _ := json.Marshal(body)

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.UltravoxBaseURL+"/calls", bytes.NewReader(b))
	if err != nil {
		return domain.AgentSession{}, fmt.Errorf("op=ultravox.create_call: %w", domain.ErrVendorUnavailable)
	}
	r.Header.Set("X-API-Key", p.cfg.UltravoxAPIKey)
	r.Header.Set("Content-Type", "application/json")

	resp, err := p.hc.Do(r)
	if err != nil {
		slog.Error("voice-agent request failed", slog.String("vendor", "ultravox"), slog.Any("error", err))
		return domain.AgentSession{}, fmt.Errorf("op=ultravox.create_call: %w", domain.ErrVendorUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("voice-agent non-2xx", slog.String("vendor", "ultravox"),
			slog.Int("status", resp.StatusCode), slog.String("body", string(snippet)))
		return domain.AgentSession{}, fmt.Errorf("op=ultravox.create_call: status %d: %w", resp.StatusCode, domain.ErrVendorUnavailable)
	}

	var out createCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.AgentSession{}, fmt.Errorf("op=ultravox.create_call: decode: %w", domain.ErrVendorUnavailable)
	}
	if out.CallID == "" || out.JoinURL == "" {
		return domain.AgentSession{}, fmt.Errorf("op=ultravox.create_call: incomplete response: %w", domain.ErrVendorUnavailable)
	}

	return domain.AgentSession{
		Kind:    domain.AgentSessionLive,
		CallID:  out.CallID,
		JoinURL: out.JoinURL,
	}, nil
}

type callDetails struct {
	Summary      string `json:"summary"`
	ShortSummary string `json:"shortSummary"`
}

type callMessages struct {
	Results []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"results"`
}

// FetchCallSummary retrieves post-call summary and transcript. The two
// fetches fail independently: a missing transcript still yields a usable
// summary and vice versa.
func (p *Provider) FetchCallSummary(ctx domain.Context, externalCallID string) (domain.CallSummary, error) {
	summary, sErr := p.fetchSummary(ctx, externalCallID)
	transcript, tErr := p.fetchTranscript(ctx, externalCallID)
	if sErr != nil && tErr != nil {
		return domain.CallSummary{}, fmt.Errorf("op=ultravox.fetch_summary: %w", domain.ErrVendorUnavailable)
	}
	if summary == "" {
		summary = "No summary available"
	}
	if transcript == "" {
		transcript = "No transcript available"
	}
	return domain.CallSummary{Summary: summary, Transcript: transcript}, nil
}

func (p *Provider) fetchSummary(ctx domain.Context, callID string) (string, error) {
	var out callDetails
	if err := p.getJSON(ctx, p.cfg.UltravoxBaseURL+"/calls/"+callID, &out); err != nil {
		slog.Warn("voice-agent summary fetch failed", slog.String("vendor", "ultravox"), slog.Any("error", err))
		return "", err
	}
	if out.Summary != "" {
		return out.Summary, nil
	}
	return out.ShortSummary, nil
}

func (p *Provider) fetchTranscript(ctx domain.Context, callID string) (string, error) {
	var out callMessages
	if err := p.getJSON(ctx, p.cfg.UltravoxBaseURL+"/calls/"+callID+"/messages", &out); err != nil {
		slog.Warn("voice-agent transcript fetch failed", slog.String("vendor", "ultravox"), slog.Any("error", err))
		return "", err
	}
	return assembleTranscript(out), nil
}

// assembleTranscript flattens vendor messages into speaker-labelled lines.
func assembleTranscript(msgs callMessages) string {
	var b strings.Builder
	for _, m := range msgs.Results {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		switch m.Role {
		case "MESSAGE_ROLE_AGENT":
			b.WriteString("Agent: ")
		case "MESSAGE_ROLE_USER":
			b.WriteString("Candidate: ")
		default:
			b.WriteString(m.Role + ": ")
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func (p *Provider) getJSON(ctx domain.Context, url string, out any) error {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	r.Header.Set("X-API-Key", p.cfg.UltravoxAPIKey)
	resp, err := p.hc.Do(r)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
