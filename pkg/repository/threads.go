package repository

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kennyanoano/GeminiReImage/pkg/domain"
)

type ThreadStore interface {
	SaveThread(threadID string, thread *domain.Thread) bool
	LoadThread(threadID string) *domain.Thread
	ListThreadIDs() []string
}

// ThreadRepository owns the in-memory map of threads and the current-thread
// pointer. Persistence failures are logged and reduced to boolean returns;
// the in-memory state is updated regardless so callers stay responsive.
type ThreadRepository struct {
	mu        sync.RWMutex
	store     ThreadStore
	threads   map[string]*domain.Thread
	currentID string
}

// NewThreadRepository loads every persisted thread and selects the most
// recently updated one as current. If none exist it synthesizes one new
// thread, so there is never a "no current thread" state after construction.
func NewThreadRepository(store ThreadStore) *ThreadRepository {
	r := &ThreadRepository{
		store:   store,
		threads: make(map[string]*domain.Thread),
	}

	for _, id := range store.ListThreadIDs() {
		if thread := store.LoadThread(id); thread != nil {
			r.threads[id] = thread
		}
	}

	for id, thread := range r.threads {
		if r.currentID == "" || thread.LastUpdatedAt > r.threads[r.currentID].LastUpdatedAt {
			r.currentID = id
		}
	}

	if len(r.threads) == 0 {
		r.CreateThread(domain.DefaultThreadTitle)
	}

	return r
}

// CreateThread creates a thread with a generated id, makes it current and
// persists it immediately.
func (r *ThreadRepository) CreateThread(title string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if title == "" {
		title = domain.DefaultThreadTitle
	}

	now := nowStamp()
	thread := &domain.Thread{
		ThreadID:      newThreadID(),
		CreatedAt:     now,
		LastUpdatedAt: now,
		Title:         title,
		Conversations: []domain.Message{},
	}

	r.threads[thread.ThreadID] = thread
	r.currentID = thread.ThreadID

	if !r.store.SaveThread(thread.ThreadID, thread) {
		slog.Warn("new thread not persisted", "threadID", thread.ThreadID)
	}

	return thread.ThreadID
}

// AddMessage appends a message to the current thread and persists the thread
// synchronously before returning. Returns (0, false) when there is no
// current thread.
func (r *ThreadRepository) AddMessage(role domain.Role, content, imagePath string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	thread, ok := r.threads[r.currentID]
	if !ok {
		return 0, false
	}

	now := nowStamp()
	msg := domain.Message{
		MessageID: len(thread.Conversations) + 1,
		Timestamp: now,
		Role:      role,
		Content:   content,
		ImagePath: imagePath,
	}

	thread.Conversations = append(thread.Conversations, msg)
	if imagePath != "" {
		thread.LatestImagePath = imagePath
	}
	// UTC RFC 3339 stamps share a fixed offset and so order lexically;
	// this keeps last_updated_at non-decreasing across clock adjustments.
	if now > thread.LastUpdatedAt {
		thread.LastUpdatedAt = now
	}

	if !r.store.SaveThread(thread.ThreadID, thread) {
		slog.Warn("message appended but thread not persisted", "threadID", thread.ThreadID, "messageID", msg.MessageID)
	}

	return msg.MessageID, true
}

// SetCurrent switches the current-thread pointer. Unknown ids fail and leave
// the pointer unchanged; nothing is created.
func (r *ThreadRepository) SetCurrent(threadID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.threads[threadID]; !ok {
		return false
	}
	r.currentID = threadID
	return true
}

func (r *ThreadRepository) CurrentID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentID
}

// CurrentThread returns a copy of the current thread.
func (r *ThreadRepository) CurrentThread() (domain.Thread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread, ok := r.threads[r.currentID]
	if !ok {
		return domain.Thread{}, false
	}
	return copyThread(thread), true
}

// History returns the current thread's messages in insertion order.
func (r *ThreadRepository) History() []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread, ok := r.threads[r.currentID]
	if !ok {
		return []domain.Message{}
	}
	out := make([]domain.Message, len(thread.Conversations))
	copy(out, thread.Conversations)
	return out
}

// Titles maps every known thread id to its title.
func (r *ThreadRepository) Titles() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	titles := make(map[string]string, len(r.threads))
	for id, thread := range r.threads {
		titles[id] = thread.Title
	}
	return titles
}

func (r *ThreadRepository) LatestImagePath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread, ok := r.threads[r.currentID]
	if !ok {
		return ""
	}
	return thread.LatestImagePath
}

// MessageCount reports the current thread's conversation length.
func (r *ThreadRepository) MessageCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread, ok := r.threads[r.currentID]
	if !ok {
		return 0
	}
	return len(thread.Conversations)
}

// UpdateTitle renames the current thread and persists it.
func (r *ThreadRepository) UpdateTitle(title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	thread, ok := r.threads[r.currentID]
	if !ok {
		return false
	}

	thread.Title = title
	now := nowStamp()
	if now > thread.LastUpdatedAt {
		thread.LastUpdatedAt = now
	}

	if !r.store.SaveThread(thread.ThreadID, thread) {
		slog.Warn("title updated but thread not persisted", "threadID", thread.ThreadID)
	}
	return true
}

// nowStamp formats the current time in UTC. Local offsets vary with DST and
// would break the lexical ordering of last_updated_at.
func nowStamp() string {
	return time.Now().UTC().Format(domain.TimestampFormat)
}

// newThreadID generates a collision-free id. Count-derived ordinals would
// collide after out-of-band deletions, so a random fragment is used instead.
func newThreadID() string {
	return "thread_" + uuid.NewString()[:8]
}

func copyThread(t *domain.Thread) domain.Thread {
	out := *t
	out.Conversations = make([]domain.Message, len(t.Conversations))
	copy(out.Conversations, t.Conversations)
	return out
}
