package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kennyanoano/GeminiReImage/pkg/api/response"
	"github.com/kennyanoano/GeminiReImage/pkg/domain"
)

type ThreadsProvider interface {
	CreateThread(title string) string
	SetCurrent(threadID string) bool
	CurrentID() string
	CurrentThread() (domain.Thread, bool)
	Titles() map[string]string
	LatestImagePath() string
	UpdateTitle(title string) bool
}

type threads struct {
	provider ThreadsProvider
	writer   response.JSONResponseWriter
}

func NewThreads(provider ThreadsProvider) *threads {
	return &threads{
		provider: provider,
		writer:   response.JSONResponseWriter{},
	}
}

// List returns every known thread's title plus the current-thread pointer.
func (t *threads) List(w http.ResponseWriter, r *http.Request) {
	t.writer.WriteSuccessResponse(w, map[string]interface{}{
		"current_thread_id": t.provider.CurrentID(),
		"threads":           t.provider.Titles(),
	})
}

// Create starts a new conversation and makes it current.
func (t *threads) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.Body != nil {
		// An empty body means default title.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	threadID := t.provider.CreateThread(req.Title)
	t.writer.WriteResponse(w, http.StatusCreated, map[string]string{"thread_id": threadID})
}

// GetCurrent returns the full current thread with its conversation.
func (t *threads) GetCurrent(w http.ResponseWriter, r *http.Request) {
	thread, ok := t.provider.CurrentThread()
	if !ok {
		t.writer.WriteErrorResponse(w, http.StatusNotFound, domain.ErrNoCurrentThread.Error())
		return
	}
	t.writer.WriteSuccessResponse(w, thread)
}

// SetCurrent switches the current-thread pointer to an existing thread.
func (t *threads) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThreadID string `json:"thread_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ThreadID == "" {
		t.writer.WriteErrorResponse(w, http.StatusBadRequest, "thread_id is missing or empty.")
		return
	}

	if !t.provider.SetCurrent(req.ThreadID) {
		t.writer.WriteErrorResponse(w, http.StatusNotFound, domain.ErrUnknownThread.Error())
		return
	}
	t.writer.WriteSuccessResponse(w, map[string]string{"thread_id": req.ThreadID})
}

// UpdateTitle renames the current thread.
func (t *threads) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		t.writer.WriteErrorResponse(w, http.StatusBadRequest, "title is missing or empty.")
		return
	}

	if !t.provider.UpdateTitle(req.Title) {
		t.writer.WriteErrorResponse(w, http.StatusNotFound, "No current thread.")
		return
	}
	t.writer.WriteSuccessResponse(w, map[string]string{"title": req.Title})
}

// GetLatestImage serves the current thread's most recent image file.
func (t *threads) GetLatestImage(w http.ResponseWriter, r *http.Request) {
	path := t.provider.LatestImagePath()
	if path == "" {
		t.writer.WriteErrorResponse(w, http.StatusNotFound, "No image for the current thread.")
		return
	}
	http.ServeFile(w, r, path)
}
