package ai

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/voice-screener/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/voice-screener/internal/adapter/observability"
	"github.com/fairyhunter13/voice-screener/internal/domain"
	"github.com/fairyhunter13/voice-screener/pkg/textx"
)

const noSummaryMarker = "No summary available"

// summaryTokenBudget caps how much vendor summary text is embedded in the
// prompt. Anything past it is cut so the request always fits the model's
// context window.
const summaryTokenBudget = 2048

const analyzerSystemPrompt = `You are an AI recruitment assistant analyzing a voice screening summary. Respond with a single JSON object and nothing else.`

const analyzerUserPromptTemplate = `Summary:
%s

Please analyze this summary and extract the following information:

1. Notice period: Extract the candidate's notice period and standardize it to a clear format (e.g., "30 days", "2 months", "immediate"). If not mentioned, use "Unknown".
2. Current compensation: Extract the candidate's current compensation and standardize it (e.g., "$90,000/year"). If not mentioned, use "Unknown".
3. Expected compensation: Extract the candidate's expected compensation and standardize it. If not mentioned, use "Unknown".
4. Screening score: Provide a score from 0 to 100 based on how well the candidate communicated, their qualifications, and overall fit for the role.

Provide your response in the following JSON format:
{
    "notice_period": "standardized period",
    "current_compensation": "standardized amount",
    "expected_compensation": "standardized amount",
    "screening_score": numeric_score
}
Only include the JSON object, nothing else.`

// Analyzer implements domain.TranscriptAnalyzer on top of an LLM client.
// It never fails: every parse or transport problem degrades to the safe
// default bundle so a bad model response cannot block call reconciliation.
type Analyzer struct {
	ai        domain.AIClient
	cleaner   *ResponseCleaner
	counter   *tokencount.Counter
	model     string
	maxTokens int
}

// NewAnalyzer constructs an Analyzer for the given chat model.
func NewAnalyzer(ai domain.AIClient, model string, maxTokens int) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Analyzer{
		ai:        ai,
		cleaner:   NewResponseCleaner(),
		counter:   tokencount.NewCounter(),
		model:     model,
		maxTokens: maxTokens,
	}
}

// DefaultResults is the bundle written when no analysis is possible.
func DefaultResults(summary string) domain.ScreeningResults {
	return domain.ScreeningResults{
		Score:                0,
		NoticePeriod:         "Not specified",
		CurrentCompensation:  "Not specified",
		ExpectedCompensation: "Not specified",
		Summary:              summary,
	}
}

// Analyze extracts structured screening fields from a call summary.
// The summary is vendor-supplied text, so it is sanitized and capped to a
// token budget before it is embedded in a prompt.
func (a *Analyzer) Analyze(ctx domain.Context, summary string) domain.ScreeningResults {
	summary = textx.SanitizeText(summary)
	if summary == "" || summary == noSummaryMarker {
		slog.Warn("no valid summary provided for analysis")
		return DefaultResults(summary)
	}

	promptSummary := summary
	if trimmed, cut, err := a.counter.TruncateTokens(summary, a.model, summaryTokenBudget); err == nil && cut {
		slog.Warn("summary over token budget, truncating prompt",
			slog.Int("budget", summaryTokenBudget), slog.String("model", a.model))
		promptSummary = trimmed
	}

	userPrompt := strings.Replace(analyzerUserPromptTemplate, "%s", promptSummary, 1)
	if n, err := a.counter.CountChatTokens(analyzerSystemPrompt, userPrompt, a.model); err == nil {
		slog.Debug("analysis prompt sized", slog.Int("prompt_tokens", n), slog.String("model", a.model))
	}

	raw, err := a.ai.ChatJSON(ctx, analyzerSystemPrompt, userPrompt, a.maxTokens)
	if err != nil {
		slog.Error("summary analysis failed", slog.Any("error", err))
		return DefaultResults(summary)
	}

	cleaned := a.cleaner.CleanJSONResponse(raw)
	var parsed struct {
		NoticePeriod         string  `json:"notice_period"`
		CurrentCompensation  string  `json:"current_compensation"`
		ExpectedCompensation string  `json:"expected_compensation"`
		ScreeningScore       float64 `json:"screening_score"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		slog.Error("summary analysis returned unparseable JSON",
			slog.Any("error", err), slog.Int("response_len", len(raw)))
		return DefaultResults(summary)
	}

	res := domain.ScreeningResults{
		Score:                clampScore(int(parsed.ScreeningScore)),
		NoticePeriod:         orNotSpecified(parsed.NoticePeriod),
		CurrentCompensation:  orNotSpecified(parsed.CurrentCompensation),
		ExpectedCompensation: orNotSpecified(parsed.ExpectedCompensation),
		Summary:              summary,
	}
	observability.ObserveScreeningScore(res.Score)
	return res
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func orNotSpecified(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Not specified"
	}
	return s
}
