package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/voice-screener/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

func TestJobRepo_Get(t *testing.T) {
	now := time.Now()
	p := &poolStub{row: rowStub{scan: func(dest ...any) error {
		*(dest[0].(*string)) = "job-1"
		*(dest[1].(*string)) = "Backend Developer"
		*(dest[2].(*string)) = "Build APIs"
		*(dest[3].(*string)) = "Go, Postgres"
		*(dest[4].(*int)) = 3
		*(dest[5].(*time.Time)) = now
		return nil
	}}}
	repo := postgres.NewJobRepo(p)
	j, err := repo.Get(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, "Backend Developer", j.Title)
	require.Equal(t, 3, j.PhoneScreened)
}

func TestJobRepo_Get_NotFound(t *testing.T) {
	p := &poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}}
	repo := postgres.NewJobRepo(p)
	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRepo_IncrementPhoneScreened(t *testing.T) {
	p := &poolStub{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := postgres.NewJobRepo(p)
	require.NoError(t, repo.IncrementPhoneScreened(context.Background(), "job-1"))
	require.Contains(t, p.execSQL, "phone_screened=phone_screened+1")
}

func TestJobRepo_IncrementPhoneScreened_NotFound(t *testing.T) {
	p := &poolStub{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := postgres.NewJobRepo(p)
	err := repo.IncrementPhoneScreened(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
