package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/voice-screener/internal/app"
	"github.com/fairyhunter13/voice-screener/internal/domain"
	"github.com/fairyhunter13/voice-screener/internal/domain/mocks"
)

func TestStaleCallSweeper_FinalizesAndReleases(t *testing.T) {
	sessions := &mocks.MockCallSessionRepository{}
	cands := &mocks.MockCandidateRepository{}
	stale := []domain.CallSession{
		{TelephonyCallID: "CA1", CandidateID: "c1", Status: domain.CallInitiated},
		{TelephonyCallID: "CA2", CandidateID: "c2", Status: domain.CallInitiated},
	}
	sessions.On("ListStale", mock.Anything, mock.Anything, 50).Return(stale, nil)
	sessions.On("Finalize", mock.Anything, "CA1", domain.CallFailed, (*domain.ScreeningResults)(nil)).Return(true, nil)
	sessions.On("Finalize", mock.Anything, "CA2", domain.CallFailed, (*domain.ScreeningResults)(nil)).Return(false, nil)
	cands.On("SetScreeningInProgress", mock.Anything, "c1", false).Return(nil)

	sw := app.NewStaleCallSweeper(sessions, cands, 30*time.Minute, time.Hour, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // run exits after the initial sweep
	sw.Run(ctx)

	sessions.AssertExpectations(t)
	cands.AssertExpectations(t)
	// CA2 lost the race to a webhook; its candidate must not be released here.
	cands.AssertNotCalled(t, "SetScreeningInProgress", mock.Anything, "c2", false)
}

func TestStaleCallSweeper_ListFailureIsNonFatal(t *testing.T) {
	sessions := &mocks.MockCallSessionRepository{}
	cands := &mocks.MockCandidateRepository{}
	sessions.On("ListStale", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	sw := app.NewStaleCallSweeper(sessions, cands, 0, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sw.Run(ctx)

	cands.AssertNotCalled(t, "SetScreeningInProgress", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewStaleCallSweeper_NilDeps(t *testing.T) {
	if sw := app.NewStaleCallSweeper(nil, nil, 0, 0, 0); sw != nil {
		t.Fatal("expected nil sweeper without deps")
	}
	var sw *app.StaleCallSweeper
	sw.Run(context.Background()) // must not panic
}
