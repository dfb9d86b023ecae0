package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

func testCfg(base string) config.Config {
	return config.Config{
		TwilioAccountSID: "AC123",
		TwilioAuthToken:  "tok",
		TwilioBaseURL:    base,
	}
}

func TestPlaceCall_LiveSession(t *testing.T) {
	var gotPath string
	var gotForm url.Values
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "CA999", "status": "queued"})
	}))
	defer srv.Close()

	c := New(testCfg(srv.URL))
	sid, err := c.PlaceCall(context.Background(), "+19007696846", "+15550001111",
		domain.CallInstructions{JoinURL: "wss://join.example/uv-1?x=a&y=b"},
		"https://app.example/v1/candidates/callback/call-status")
	require.NoError(t, err)
	assert.Equal(t, "CA999", sid)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Calls.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "tok", gotPass)
	assert.Equal(t, "+19007696846", gotForm.Get("To"))
	assert.Equal(t, "+15550001111", gotForm.Get("From"))
	assert.Contains(t, gotForm.Get("Twiml"), `<Stream url="wss://join.example/uv-1?x=a&amp;y=b"/>`)
	assert.Equal(t, "https://app.example/v1/candidates/callback/call-status", gotForm.Get("StatusCallback"))
	assert.Equal(t, []string{"initiated", "ringing", "answered", "completed"}, gotForm["StatusCallbackEvent"])
}

func TestPlaceCall_InlineScript(t *testing.T) {
	var gotTwiml string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTwiml = r.PostFormValue("Twiml")
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "CA1"})
	}))
	defer srv.Close()

	script := `<Response><Say>Hello!</Say><Hangup/></Response>`
	c := New(testCfg(srv.URL))
	_, err := c.PlaceCall(context.Background(), "+19007696846", "+15550001111",
		domain.CallInstructions{InlineScript: script}, "")
	require.NoError(t, err)
	assert.Equal(t, script, gotTwiml)
}

func TestPlaceCall_MissingCredentials(t *testing.T) {
	c := New(config.Config{TwilioBaseURL: "http://127.0.0.1:0"})
	_, err := c.PlaceCall(context.Background(), "+1", "+2", domain.CallInstructions{}, "")
	assert.True(t, errors.Is(err, domain.ErrTelephonyFailed))
}

func TestPlaceCall_VendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(testCfg(srv.URL))
	_, err := c.PlaceCall(context.Background(), "+1", "+2", domain.CallInstructions{}, "")
	assert.True(t, errors.Is(err, domain.ErrTelephonyFailed))
}

func TestPlaceCall_MissingSID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	}))
	defer srv.Close()

	c := New(testCfg(srv.URL))
	_, err := c.PlaceCall(context.Background(), "+1", "+2", domain.CallInstructions{}, "")
	assert.True(t, errors.Is(err, domain.ErrTelephonyFailed))
}

func TestParseStatusCallback(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA777")
	form.Set("CallStatus", "completed")
	form.Set("CallDuration", "92")
	form.Set("From", "+15550001111")
	form.Set("To", "+19007696846")

	r := httptest.NewRequest(http.MethodPost, "/v1/candidates/callback/call-status", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	ev, err := ParseStatusCallback(r)
	require.NoError(t, err)
	assert.Equal(t, "CA777", ev.CallID)
	assert.Equal(t, domain.CallCompleted, ev.Status)
	assert.Equal(t, "92", ev.Duration)
	assert.Equal(t, "+15550001111", ev.From)
	assert.Equal(t, "+19007696846", ev.To)
}

func TestParseStatusCallback_MissingCallSid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cb", strings.NewReader("CallStatus=busy"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := ParseStatusCallback(r)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

var _ domain.TelephonyProvider = (*Client)(nil)
