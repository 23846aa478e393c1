package repository

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennyanoano/GeminiReImage/pkg/storage"
)

const testMaxItems = 20

func newHistoryRepo(t *testing.T) (*HistoryRepository, *storage.FileStore) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewFileStore(
		filepath.Join(dir, "threads"),
		dir,
		filepath.Join(dir, "history.json"),
	)
	return NewHistoryRepository(store, testMaxItems), store
}

func TestAddEntryMostRecentFirst(t *testing.T) {
	repo, _ := newHistoryRepo(t)

	repo.AddEntry("first", "/in1.png", "/out1.png")
	repo.AddEntry("second", "/in2.png", "/out2.png")

	entries := repo.Entries(0)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Prompt)
	assert.Equal(t, "first", entries[1].Prompt)
}

func TestHistoryBound(t *testing.T) {
	repo, _ := newHistoryRepo(t)

	const extra = 3
	for i := 1; i <= testMaxItems+extra; i++ {
		repo.AddEntry(fmt.Sprintf("prompt %d", i), "/in.png", "/out.png")
	}

	entries := repo.Entries(0)
	require.Len(t, entries, testMaxItems)

	// The most recent insertions survive at the front.
	assert.Equal(t, fmt.Sprintf("prompt %d", testMaxItems+extra), entries[0].Prompt)
	// The oldest survivor is the (extra+1)-th most recent insertion.
	assert.Equal(t, fmt.Sprintf("prompt %d", extra+1), entries[len(entries)-1].Prompt)
}

func TestEntriesLimit(t *testing.T) {
	repo, _ := newHistoryRepo(t)

	for i := 0; i < 5; i++ {
		repo.AddEntry(fmt.Sprintf("p%d", i), "/in.png", "/out.png")
	}

	assert.Len(t, repo.Entries(3), 3)
	assert.Len(t, repo.Entries(0), 5)
	assert.Len(t, repo.Entries(100), 5)
}

func TestEntryLookup(t *testing.T) {
	repo, _ := newHistoryRepo(t)

	id := repo.AddEntry("find me", "/in.png", "/out.png")

	entry, ok := repo.Entry(id)
	require.True(t, ok)
	assert.Equal(t, "find me", entry.Prompt)
	assert.True(t, filepath.IsAbs(entry.InputImage))
	assert.True(t, filepath.IsAbs(entry.OutputImage))

	_, ok = repo.Entry("nope")
	assert.False(t, ok)
}

func TestHistoryPersistsAcrossRepositories(t *testing.T) {
	repo, store := newHistoryRepo(t)

	id := repo.AddEntry("durable", "/in.png", "/out.png")

	reloaded := NewHistoryRepository(store, testMaxItems)
	entry, ok := reloaded.Entry(id)
	require.True(t, ok)
	assert.Equal(t, "durable", entry.Prompt)
}

func TestHistoryClear(t *testing.T) {
	repo, store := newHistoryRepo(t)

	repo.AddEntry("gone", "/in.png", "/out.png")
	repo.Clear()

	assert.Empty(t, repo.Entries(0))
	assert.Empty(t, store.LoadHistory())
}
