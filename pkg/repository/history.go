package repository

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kennyanoano/GeminiReImage/pkg/domain"
)

type HistoryStore interface {
	SaveHistory(entries []domain.HistoryEntry) bool
	LoadHistory() []domain.HistoryEntry
}

// HistoryRepository keeps a bounded, most-recent-first list of generation
// records. Insertion beyond the bound evicts the oldest entries.
type HistoryRepository struct {
	mu       sync.RWMutex
	store    HistoryStore
	entries  []domain.HistoryEntry
	maxItems int
}

func NewHistoryRepository(store HistoryStore, maxItems int) *HistoryRepository {
	return &HistoryRepository{
		store:    store,
		entries:  store.LoadHistory(),
		maxItems: maxItems,
	}
}

// AddEntry records one generation at the front of the list, truncates to the
// bound and persists the whole list. Returns the new entry's id.
func (r *HistoryRepository) AddEntry(prompt, inputImage, outputImage string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := domain.HistoryEntry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().Format(domain.HistoryTimestampFormat),
		Prompt:      prompt,
		InputImage:  absPath(inputImage),
		OutputImage: absPath(outputImage),
	}

	r.entries = append([]domain.HistoryEntry{entry}, r.entries...)
	if len(r.entries) > r.maxItems {
		r.entries = r.entries[:r.maxItems]
	}

	if !r.store.SaveHistory(r.entries) {
		slog.Warn("history entry added but not persisted", "entryID", entry.ID)
	}

	return entry.ID
}

// Entries returns up to limit entries, most recent first. limit <= 0 means
// all of them.
func (r *HistoryRepository) Entries(limit int) []domain.HistoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.HistoryEntry, n)
	copy(out, r.entries[:n])
	return out
}

// Entry finds an entry by id. Linear scan is fine given the bound.
func (r *HistoryRepository) Entry(id string) (domain.HistoryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.HistoryEntry{}, false
}

// Clear drops all entries and persists the empty list.
func (r *HistoryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = []domain.HistoryEntry{}
	r.store.SaveHistory(r.entries)
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
