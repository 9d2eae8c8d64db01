package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-review-api/internal/models"
)

func TestOpenCSVCreatesTables(t *testing.T) {
	dir := t.TempDir()
	repos, closeFn, err := Open(StorageConfig{Driver: DriverCSV, DataDir: dir})
	require.NoError(t, err)
	defer closeFn()

	for _, name := range []string{UsersFile, SubmissionsFile, LeaderboardFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	users, err := repos.Users.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestOpenSQLite(t *testing.T) {
	dir := t.TempDir()
	repos, closeFn, err := Open(StorageConfig{Driver: DriverSQLite, DataDir: dir})
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, repos.Leaderboard.Append(context.Background(), &models.LeaderboardEntry{Name: "carol", Score: 8}))
	entries, err := repos.Leaderboard.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = os.Stat(filepath.Join(dir, SQLiteFile))
	require.NoError(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, closeFn, err := Open(StorageConfig{Driver: "mongo"})
	require.Error(t, err)
	require.NotNil(t, closeFn)
}
