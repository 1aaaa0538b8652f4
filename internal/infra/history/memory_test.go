package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/textcraft/internal/domain/textcraft"
)

func TestMemoryRepositoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(10)
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Append(ctx, textcraft.Run{ID: fmt.Sprintf("r%d", i)}))
	}

	runs, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"r3", "r2"}, ids(runs))

	runs, err = repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"r3", "r2", "r1"}, ids(runs))
}

func TestMemoryRepositoryWrapsAround(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, textcraft.Run{ID: fmt.Sprintf("r%d", i)}))
	}

	runs, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"r5", "r4", "r3"}, ids(runs))
}

func TestMemoryRepositoryEmpty(t *testing.T) {
	runs, err := NewMemoryRepository(0).Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, runs)
}

func ids(runs []textcraft.Run) []string {
	out := make([]string, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.ID)
	}
	return out
}
