package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/fairyhunter13/voice-screener/internal/domain"
)

var dollarAmountRe = regexp.MustCompile(`\$[0-9][0-9,]*`)

// MockClient implements domain.AIClient deterministically for offline/mock
// mode. The returned JSON is derived from keyword heuristics over the prompt
// so tests get stable, content-sensitive results without a network call.
type MockClient struct{}

// NewMockClient constructs a deterministic mock AI client.
func NewMockClient() domain.AIClient { return &MockClient{} }

// ChatJSON returns a screening-analysis JSON derived from the user prompt.
func (m *MockClient) ChatJSON(_ domain.Context, _, userPrompt string, maxTokens int) (string, error) {
	res := SimulateScreening(userPrompt)
	payload := map[string]any{
		"notice_period":         res.NoticePeriod,
		"current_compensation":  res.CurrentCompensation,
		"expected_compensation": res.ExpectedCompensation,
		"screening_score":       res.Score,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("mock marshal: %w", err)
	}
	s := string(b)
	if maxTokens > 0 && len(s) > maxTokens*4 { // very rough guard
		s = s[:maxTokens*4]
	}
	return s, nil
}

// SimulateScreening derives screening results from transcript keywords.
// Starting from a baseline score, each qualification signal bumps it, capped
// at 100. Notice-period phrases map onto standardized values.
func SimulateScreening(transcript string) domain.ScreeningResults {
	lower := strings.ToLower(transcript)

	score := 85
	if strings.Contains(lower, "experience") {
		score += 5
	}
	if strings.Contains(lower, "degree") || strings.Contains(lower, "education") {
		score += 3
	}
	if strings.Contains(lower, "project") || strings.Contains(lower, "developed") {
		score += 4
	}
	if strings.Contains(lower, "team") || strings.Contains(lower, "collaboration") {
		score += 3
	}
	if score > 100 {
		score = 100
	}

	notice := "30 days"
	switch {
	case strings.Contains(lower, "two weeks") || strings.Contains(lower, "14 days"):
		notice = "14 days"
	case strings.Contains(lower, "one month") || strings.Contains(lower, "30 days"):
		notice = "30 days"
	case strings.Contains(lower, "immediate") || strings.Contains(lower, "right away"):
		notice = "Immediate"
	}

	// First dollar amount mentioned is taken as current compensation, the
	// second as expected. Anything beyond that is ignored.
	current, expected := "$90,000", "$110,000"
	amounts := dollarAmountRe.FindAllString(transcript, 2)
	if len(amounts) > 0 {
		current = amounts[0]
	}
	if len(amounts) > 1 {
		expected = amounts[1]
	}

	return domain.ScreeningResults{
		Score:                score,
		NoticePeriod:         notice,
		CurrentCompensation:  current,
		ExpectedCompensation: expected,
		Summary: "The candidate has relevant experience and seems to be a good fit for the role. " +
			"They articulate their skills well and have the necessary qualifications for the position.",
	}
}
