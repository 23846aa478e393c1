package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennyanoano/GeminiReImage/pkg/domain"
	"github.com/kennyanoano/GeminiReImage/pkg/storage"
)

func newThreadRepo(t *testing.T) (*ThreadRepository, *storage.FileStore) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewFileStore(
		filepath.Join(dir, "threads"),
		dir,
		filepath.Join(dir, "history.json"),
	)
	return NewThreadRepository(store), store
}

func TestNewRepositorySynthesizesThread(t *testing.T) {
	repo, store := newThreadRepo(t)

	id := repo.CurrentID()
	require.NotEmpty(t, id, "a fresh repository always has a current thread")

	thread, ok := repo.CurrentThread()
	require.True(t, ok)
	assert.Equal(t, domain.DefaultThreadTitle, thread.Title)
	assert.Empty(t, thread.Conversations)

	// The synthesized thread was persisted immediately.
	assert.NotNil(t, store.LoadThread(id))
}

func TestNewRepositoryPicksMostRecentlyUpdated(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileStore(filepath.Join(dir, "threads"), dir, filepath.Join(dir, "history.json"))

	older := &domain.Thread{ThreadID: "thread_older", CreatedAt: "2025-01-01T00:00:00Z", LastUpdatedAt: "2025-01-01T00:00:00Z", Title: "old"}
	newer := &domain.Thread{ThreadID: "thread_newer", CreatedAt: "2025-01-02T00:00:00Z", LastUpdatedAt: "2025-02-01T00:00:00Z", Title: "new"}
	require.True(t, store.SaveThread(older.ThreadID, older))
	require.True(t, store.SaveThread(newer.ThreadID, newer))

	repo := NewThreadRepository(store)

	assert.Equal(t, "thread_newer", repo.CurrentID())
	assert.Len(t, repo.Titles(), 2)
}

func TestAddMessageSequence(t *testing.T) {
	repo, _ := newThreadRepo(t)

	for i := 1; i <= 5; i++ {
		id, ok := repo.AddMessage(domain.RoleUser, "msg", "")
		require.True(t, ok)
		assert.Equal(t, i, id)
	}

	history := repo.History()
	require.Len(t, history, 5)
	for i, msg := range history {
		assert.Equal(t, i+1, msg.MessageID)
	}
}

func TestAddMessagePersistsSynchronously(t *testing.T) {
	repo, store := newThreadRepo(t)

	_, ok := repo.AddMessage(domain.RoleUser, "make it blue", "")
	require.True(t, ok)

	loaded := store.LoadThread(repo.CurrentID())
	require.NotNil(t, loaded)
	require.Len(t, loaded.Conversations, 1)
	assert.Equal(t, "make it blue", loaded.Conversations[0].Content)
	assert.Equal(t, domain.RoleUser, loaded.Conversations[0].Role)
}

func TestAddMessageUpdatesLatestImagePath(t *testing.T) {
	repo, _ := newThreadRepo(t)

	repo.AddMessage(domain.RoleUser, "start", "")
	assert.Empty(t, repo.LatestImagePath())

	repo.AddMessage(domain.RoleAssistant, "done", "/images/a_edit_02.png")
	assert.Equal(t, "/images/a_edit_02.png", repo.LatestImagePath())

	// A text-only message leaves the latest image untouched.
	repo.AddMessage(domain.RoleUser, "again", "")
	assert.Equal(t, "/images/a_edit_02.png", repo.LatestImagePath())
}

func TestSetCurrentUnknownID(t *testing.T) {
	repo, _ := newThreadRepo(t)

	before := repo.CurrentID()
	assert.False(t, repo.SetCurrent("nonexistent"))
	assert.Equal(t, before, repo.CurrentID(), "pointer unchanged on failure")
}

func TestCreateThreadBecomesCurrent(t *testing.T) {
	repo, _ := newThreadRepo(t)

	first := repo.CurrentID()
	second := repo.CreateThread("second")

	assert.NotEqual(t, first, second)
	assert.Equal(t, second, repo.CurrentID())

	require.True(t, repo.SetCurrent(first))
	assert.Equal(t, first, repo.CurrentID())
}

func TestCreateThreadIDsDoNotCollide(t *testing.T) {
	repo, _ := newThreadRepo(t)

	seen := map[string]bool{repo.CurrentID(): true}
	for i := 0; i < 50; i++ {
		id := repo.CreateThread("")
		assert.False(t, seen[id], "duplicate thread id %s", id)
		seen[id] = true
	}
}

func TestUpdateTitle(t *testing.T) {
	repo, store := newThreadRepo(t)

	require.True(t, repo.UpdateTitle("renamed"))

	assert.Equal(t, "renamed", repo.Titles()[repo.CurrentID()])
	assert.Equal(t, "renamed", store.LoadThread(repo.CurrentID()).Title)
}

func TestTimestampsAreUTC(t *testing.T) {
	repo, _ := newThreadRepo(t)

	_, ok := repo.AddMessage(domain.RoleUser, "msg", "")
	require.True(t, ok)

	thread, ok := repo.CurrentThread()
	require.True(t, ok)

	// Stamps must carry a zero offset so last_updated_at keeps ordering
	// lexically regardless of the host zone or DST transitions.
	for _, stamp := range []string{thread.CreatedAt, thread.LastUpdatedAt, thread.Conversations[0].Timestamp} {
		parsed, err := time.Parse(domain.TimestampFormat, stamp)
		require.NoError(t, err)
		_, offset := parsed.Zone()
		assert.Zero(t, offset, "stamp %q is not UTC", stamp)
	}
}

type failingStore struct{}

func (failingStore) SaveThread(string, *domain.Thread) bool { return false }
func (failingStore) LoadThread(string) *domain.Thread       { return nil }
func (failingStore) ListThreadIDs() []string                { return nil }

func TestAddMessageKeepsMemoryStateOnPersistFailure(t *testing.T) {
	repo := NewThreadRepository(failingStore{})

	id, ok := repo.AddMessage(domain.RoleUser, "still here", "")
	require.True(t, ok, "persistence failure is not fatal")
	assert.Equal(t, 1, id)
	assert.Len(t, repo.History(), 1)
}
