package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deeply", "nested", "journal.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should exist after open")
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	first := testRecord(testBase)
	first.Diagnostics = &Diagnostics{Warnings: []string{"advisory"}}
	second := testRecord(testBase.Add(time.Minute))

	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	loaded, err := reopened.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.NotNil(t, loaded.Diagnostics)
	assert.Equal(t, []string{"advisory"}, loaded.Diagnostics.Warnings)
}

func TestSQLiteStore_DuplicateRunID(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	rec := testRecord(testBase)

	require.NoError(t, s.Save(ctx, rec))
	assert.Error(t, s.Save(ctx, rec), "run IDs are unique per evaluation")
}
