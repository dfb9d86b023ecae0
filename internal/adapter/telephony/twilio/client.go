// Package twilio places outbound PSTN calls through the Twilio REST API and
// parses its status callbacks.
package twilio

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// Client implements domain.TelephonyProvider.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

func New(cfg config.Config) *Client {
	return &Client{cfg: cfg, hc: &http.Client{Timeout: 30 * time.Second}}
}

type createCallResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// PlaceCall dials the candidate. Live sessions bridge audio to the agent's
// join URL via a Connect/Stream document; fallback sessions carry the full
// interaction script inline. Returns the vendor call SID.
func (c *Client) PlaceCall(ctx domain.Context, to, from string, instr domain.CallInstructions, statusCallbackURL string) (string, error) {
	if c.cfg.TwilioAccountSID == "" || c.cfg.TwilioAuthToken == "" {
		return "", fmt.Errorf("op=twilio.place_call: credentials missing: %w", domain.ErrTelephonyFailed)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Twiml", renderDialTwiML(instr))
	if statusCallbackURL != "" {
		form.Set("StatusCallback", statusCallbackURL)
		form.Set("StatusCallbackMethod", "POST")
		for _, ev := range []string{"initiated", "ringing", "answered", "completed"} {
			form.Add("StatusCallbackEvent", ev)
		}
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.cfg.TwilioBaseURL, c.cfg.TwilioAccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("op=twilio.place_call: %w", domain.ErrTelephonyFailed)
	}
	req.SetBasicAuth(c.cfg.TwilioAccountSID, c.cfg.TwilioAuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		slog.Error("telephony request failed", slog.String("vendor", "twilio"), slog.Any("error", err))
		return "", fmt.Errorf("op=twilio.place_call: %w", domain.ErrTelephonyFailed)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("telephony non-2xx", slog.String("vendor", "twilio"),
			slog.Int("status", resp.StatusCode), slog.String("body", string(snippet)))
		return "", fmt.Errorf("op=twilio.place_call: status %d: %w", resp.StatusCode, domain.ErrTelephonyFailed)
	}

	var out createCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("op=twilio.place_call: decode: %w", domain.ErrTelephonyFailed)
	}
	if out.SID == "" {
		return "", fmt.Errorf("op=twilio.place_call: response missing sid: %w", domain.ErrTelephonyFailed)
	}

	slog.Info("outbound call placed", slog.String("vendor", "twilio"),
		slog.String("call_sid", out.SID), slog.String("status", out.Status))
	return out.SID, nil
}

func renderDialTwiML(instr domain.CallInstructions) string {
	if instr.JoinURL != "" {
		return fmt.Sprintf(`<Response><Connect><Stream url="%s"/></Connect></Response>`, xmlEscapeAttr(instr.JoinURL))
	}
	return instr.InlineScript
}

func xmlEscapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// ParseStatusCallback reads a Twilio status webhook (form-encoded POST) into
// a CallEvent. Unknown statuses pass through untouched; the reconciler
// decides what is terminal.
func ParseStatusCallback(r *http.Request) (domain.CallEvent, error) {
	if err := r.ParseForm(); err != nil {
		return domain.CallEvent{}, fmt.Errorf("op=twilio.parse_status: %w: %v", domain.ErrInvalidArgument, err)
	}
	ev := domain.CallEvent{
		CallID:   r.PostFormValue("CallSid"),
		Status:   domain.CallStatus(r.PostFormValue("CallStatus")),
		Duration: r.PostFormValue("CallDuration"),
		From:     r.PostFormValue("From"),
		To:       r.PostFormValue("To"),
	}
	if ev.CallID == "" {
		return domain.CallEvent{}, fmt.Errorf("op=twilio.parse_status: missing CallSid: %w", domain.ErrInvalidArgument)
	}
	return ev, nil
}
