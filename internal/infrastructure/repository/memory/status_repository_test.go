package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/status"
)

func TestStatusRepository_ReplaceSeasonIsolatesSeasons(t *testing.T) {
	t.Parallel()

	repo := NewStatusRepository()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceSeason(ctx, 2020, []status.Event{
		{PlayerID: 1, PlayerName: "salah", Step: 1},
		{PlayerID: 1, PlayerName: "salah", Step: 2},
	}))
	require.NoError(t, repo.ReplaceSeason(ctx, 2021, []status.Event{
		{PlayerID: 2, PlayerName: "kane", Step: 1},
	}))

	got, err := repo.ListBySeason(ctx, 2020)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].PlayerID)

	count, err := repo.CountBySeason(ctx, 2021)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestStatusRepository_ReplaceSeasonOverwrites(t *testing.T) {
	t.Parallel()

	repo := NewStatusRepository()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceSeason(ctx, 2020, []status.Event{
		{PlayerID: 1, Step: 1},
		{PlayerID: 2, Step: 1},
	}))
	require.NoError(t, repo.ReplaceSeason(ctx, 2020, []status.Event{
		{PlayerID: 3, Step: 1},
	}))

	got, err := repo.ListBySeason(ctx, 2020)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(3), got[0].PlayerID)
}

func TestStatusRepository_ListCopiesOut(t *testing.T) {
	t.Parallel()

	repo := NewStatusRepository()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceSeason(ctx, 2020, []status.Event{
		{PlayerID: 1, PlayerName: "salah", Step: 1},
	}))

	got, err := repo.ListBySeason(ctx, 2020)
	require.NoError(t, err)
	got[0].PlayerName = "mutated"

	again, err := repo.ListBySeason(ctx, 2020)
	require.NoError(t, err)
	require.Equal(t, "salah", again[0].PlayerName)
}
