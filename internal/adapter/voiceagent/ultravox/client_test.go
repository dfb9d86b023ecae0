package ultravox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

type stubLimiter struct{ allow bool }

func (s stubLimiter) Allow(_ domain.Context, _ string) bool { return s.allow }

func TestCreateCallSession_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"callId":  "uv-123",
			"joinUrl": "wss://join.example/uv-123",
		})
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, nil)
	sess, err := p.CreateCallSession(context.Background(), "You are a recruiter.", domain.VoiceConfig{
		Voice: "Mark", Model: "fixie-ai/ultravox", Temperature: 0.3, Recording: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/calls", gotPath)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "You are a recruiter.", gotBody["systemPrompt"])
	assert.Contains(t, gotBody, "medium")
	assert.Equal(t, domain.AgentSessionLive, sess.Kind)
	assert.Equal(t, "uv-123", sess.CallID)
	assert.Equal(t, "wss://join.example/uv-123", sess.JoinURL)
}

func TestCreateCallSession_MissingKey(t *testing.T) {
	p := New(config.Config{}, nil)
	_, err := p.CreateCallSession(context.Background(), "p", domain.VoiceConfig{})
	assert.True(t, errors.Is(err, domain.ErrVendorUnavailable))
}

func TestCreateCallSession_Throttled(t *testing.T) {
	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: "http://127.0.0.1:0"}, stubLimiter{allow: false})
	_, err := p.CreateCallSession(context.Background(), "p", domain.VoiceConfig{})
	assert.True(t, errors.Is(err, domain.ErrVendorUnavailable))
}

func TestCreateCallSession_VendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, stubLimiter{allow: true})
	_, err := p.CreateCallSession(context.Background(), "p", domain.VoiceConfig{})
	assert.True(t, errors.Is(err, domain.ErrVendorUnavailable))
}

func TestCreateCallSession_IncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"callId": "uv-1"})
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, nil)
	_, err := p.CreateCallSession(context.Background(), "p", domain.VoiceConfig{})
	assert.True(t, errors.Is(err, domain.ErrVendorUnavailable))
}

func TestFetchCallSummary_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/calls/uv-9":
			_ = json.NewEncoder(w).Encode(map[string]string{"summary": "Strong candidate."})
		case "/calls/uv-9/messages":
			_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{
				{"role": "MESSAGE_ROLE_AGENT", "text": "Hello, thank you for taking the call."},
				{"role": "MESSAGE_ROLE_USER", "text": "Hi, happy to chat."},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, nil)
	sum, err := p.FetchCallSummary(context.Background(), "uv-9")
	require.NoError(t, err)
	assert.Equal(t, "Strong candidate.", sum.Summary)
	assert.Contains(t, sum.Transcript, "Agent: Hello, thank you for taking the call.")
	assert.Contains(t, sum.Transcript, "Candidate: Hi, happy to chat.")
}

func TestFetchCallSummary_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/calls/uv-9" {
			_ = json.NewEncoder(w).Encode(map[string]string{"shortSummary": "Brief chat."})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, nil)
	sum, err := p.FetchCallSummary(context.Background(), "uv-9")
	require.NoError(t, err)
	assert.Equal(t, "Brief chat.", sum.Summary)
	assert.Equal(t, "No transcript available", sum.Transcript)
}

func TestFetchCallSummary_TranscriptFailureGetsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/calls/uv-9" {
			_ = json.NewEncoder(w).Encode(map[string]string{"summary": "Solid screening call."})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, nil)
	sum, err := p.FetchCallSummary(context.Background(), "uv-9")
	require.NoError(t, err)
	assert.Equal(t, "Solid screening call.", sum.Summary)
	assert.Equal(t, "No transcript available", sum.Transcript)
}

func TestFetchCallSummary_BothFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, nil)
	_, err := p.FetchCallSummary(context.Background(), "uv-9")
	assert.True(t, errors.Is(err, domain.ErrVendorUnavailable))
}

func TestFetchCallSummary_EmptySummaryPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/calls/uv-9/messages" {
			_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{
				{"role": "MESSAGE_ROLE_USER", "text": "Hello?"},
			}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	p := New(config.Config{UltravoxAPIKey: "k", UltravoxBaseURL: srv.URL}, nil)
	sum, err := p.FetchCallSummary(context.Background(), "uv-9")
	require.NoError(t, err)
	assert.Equal(t, "No summary available", sum.Summary)
	assert.Equal(t, "Candidate: Hello?", sum.Transcript)
}

func TestAssembleTranscript_SkipsEmptyAndUnknownRoles(t *testing.T) {
	var msgs callMessages
	msgs.Results = []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	}{
		{Role: "MESSAGE_ROLE_AGENT", Text: "Hi"},
		{Role: "MESSAGE_ROLE_USER", Text: "   "},
		{Role: "MESSAGE_ROLE_TOOL", Text: "lookup"},
	}
	got := assembleTranscript(msgs)
	assert.Equal(t, "Agent: Hi\nMESSAGE_ROLE_TOOL: lookup", got)
}

var _ domain.VoiceAgentProvider = (*Provider)(nil)
