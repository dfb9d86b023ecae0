// Package fallback renders a scripted TwiML screening call for use when the
// live voice-agent vendor is unavailable.
package fallback

import (
	"encoding/xml"
	"fmt"

	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Timeout       int      `xml:"timeout,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Say           twimlSay
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Provider implements domain.VoiceAgentProvider with a pre-scripted call.
// Sessions carry inline TwiML instead of a vendor join URL, so the session
// never fails: it is the path of last resort.
type Provider struct {
	script config.ScriptConfig
	voice  string
}

func New(script config.ScriptConfig, voice string) *Provider {
	if voice == "" {
		voice = "alice"
	}
	return &Provider{script: script, voice: voice}
}

// CreateCallSession renders the screening script as TwiML. The prompt and
// voice config of the live vendor are ignored; the scripted call reads its
// own configured texts.
func (p *Provider) CreateCallSession(_ domain.Context, _ string, _ domain.VoiceConfig) (domain.AgentSession, error) {
	return domain.AgentSession{
		Kind:   domain.AgentSessionFallback,
		Script: p.RenderTwiML(),
	}, nil
}

// FetchCallSummary is unsupported for scripted calls: there is no vendor
// holding a transcript. Callers fall through to safe-default analysis.
func (p *Provider) FetchCallSummary(_ domain.Context, externalCallID string) (domain.CallSummary, error) {
	return domain.CallSummary{}, fmt.Errorf("op=fallback.fetch_summary id=%s: scripted call has no vendor record: %w", externalCallID, domain.ErrNotFound)
}

// RenderTwiML builds the full scripted call: greeting, one speech Gather per
// question, closing, hangup.
func (p *Provider) RenderTwiML() string {
	resp := twimlResponse{}
	resp.Verbs = append(resp.Verbs, twimlSay{Voice: p.voice, Text: p.script.Greeting})
	for _, q := range p.script.Questions {
		resp.Verbs = append(resp.Verbs,
			twimlGather{
				Input:         "speech",
				Timeout:       5,
				SpeechTimeout: "auto",
				Say:           twimlSay{Voice: p.voice, Text: q},
			},
			twimlPause{Length: 1},
		)
	}
	resp.Verbs = append(resp.Verbs, twimlSay{Voice: p.voice, Text: p.script.Closing}, twimlHangup{})

	out, err := xml.Marshal(resp)
	if err != nil {
		// Marshalling static structs only fails on invalid chardata; keep the
		// call alive with a bare goodbye.
		return `<Response><Say>Thank you for your time. Goodbye.</Say><Hangup/></Response>`
	}
	return xml.Header + string(out)
}
