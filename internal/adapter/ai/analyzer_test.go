package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/voice-screener/internal/adapter/ai"
	"github.com/fairyhunter13/voice-screener/internal/domain"
	"github.com/fairyhunter13/voice-screener/internal/domain/mocks"
)

func TestAnalyzer_Analyze_Success(t *testing.T) {
	t.Parallel()
	client := &mocks.MockAIClient{}
	client.On("ChatJSON", mock.Anything, mock.Anything, mock.MatchedBy(func(p string) bool {
		return len(p) > 0
	}), 512).Return(`{"notice_period":"30 days","current_compensation":"$90,000/year","expected_compensation":"$110,000/year","screening_score":85}`, nil)

	a := ai.NewAnalyzer(client, "gpt-4o-mini", 512)
	res := a.Analyze(context.Background(), "Candidate has a 30-day notice period, makes $90,000 and expects $110,000.")
	require.Equal(t, 85, res.Score)
	require.Equal(t, "30 days", res.NoticePeriod)
	require.Equal(t, "$90,000/year", res.CurrentCompensation)
	require.Equal(t, "$110,000/year", res.ExpectedCompensation)
	client.AssertExpectations(t)
}

func TestAnalyzer_Analyze_CodeFencedResponse(t *testing.T) {
	t.Parallel()
	client := &mocks.MockAIClient{}
	client.On("ChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("```json\n{\"notice_period\":\"14 days\",\"screening_score\":72.4}\n```", nil)

	a := ai.NewAnalyzer(client, "gpt-4o-mini", 0)
	res := a.Analyze(context.Background(), "some summary")
	// fractional scores truncate toward zero
	require.Equal(t, 72, res.Score)
	require.Equal(t, "14 days", res.NoticePeriod)
	require.Equal(t, "Not specified", res.CurrentCompensation)
}

func TestAnalyzer_Analyze_EmptySummary(t *testing.T) {
	t.Parallel()
	client := &mocks.MockAIClient{}
	a := ai.NewAnalyzer(client, "gpt-4o-mini", 512)

	for _, summary := range []string{"", "   ", "No summary available"} {
		res := a.Analyze(context.Background(), summary)
		require.Equal(t, 0, res.Score)
		require.Equal(t, "Not specified", res.NoticePeriod)
		require.Equal(t, "Not specified", res.CurrentCompensation)
		require.Equal(t, "Not specified", res.ExpectedCompensation)
	}
	// the client must never be called without a usable summary
	client.AssertNotCalled(t, "ChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzer_Analyze_ClientError_Defaults(t *testing.T) {
	t.Parallel()
	client := &mocks.MockAIClient{}
	client.On("ChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("provider down"))

	a := ai.NewAnalyzer(client, "gpt-4o-mini", 512)
	res := a.Analyze(context.Background(), "a valid summary")
	require.Equal(t, ai.DefaultResults("a valid summary"), res)
}

func TestAnalyzer_Analyze_UnparseableJSON_Defaults(t *testing.T) {
	t.Parallel()
	client := &mocks.MockAIClient{}
	client.On("ChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("I could not find any structured data, sorry.", nil)

	a := ai.NewAnalyzer(client, "gpt-4o-mini", 512)
	res := a.Analyze(context.Background(), "a valid summary")
	require.Equal(t, 0, res.Score)
	require.Equal(t, "Not specified", res.NoticePeriod)
}

func TestAnalyzer_Analyze_ScoreClamped(t *testing.T) {
	t.Parallel()
	client := &mocks.MockAIClient{}
	client.On("ChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`{"screening_score":250,"notice_period":"30 days"}`, nil).Once()
	client.On("ChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`{"screening_score":-3}`, nil).Once()

	a := ai.NewAnalyzer(client, "gpt-4o-mini", 512)
	require.Equal(t, 100, a.Analyze(context.Background(), "x y z").Score)
	require.Equal(t, 0, a.Analyze(context.Background(), "x y z").Score)
}

func TestAnalyzer_Analyze_OverlongSummaryTruncated(t *testing.T) {
	t.Parallel()
	// the tail marker sits well past the 2048-token budget and must not
	// survive into the prompt
	long := strings.Repeat("the candidate spoke about compensation and availability ", 600) + "TAIL-MARKER"

	var gotPrompt string
	client := &mocks.MockAIClient{}
	client.On("ChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { gotPrompt = args.String(2) }).
		Return(`{"screening_score":60}`, nil)

	a := ai.NewAnalyzer(client, "gpt-4o-mini", 512)
	res := a.Analyze(context.Background(), long)

	require.Equal(t, 60, res.Score)
	require.Contains(t, gotPrompt, "the candidate spoke about compensation")
	require.NotContains(t, gotPrompt, "TAIL-MARKER")
	require.Less(t, len(gotPrompt), len(long))
	// the stored summary keeps the full text
	require.Contains(t, res.Summary, "TAIL-MARKER")
}

var _ domain.TranscriptAnalyzer = (*ai.Analyzer)(nil)
