package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ThreadsHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetCurrent(w http.ResponseWriter, r *http.Request)
	SetCurrent(w http.ResponseWriter, r *http.Request)
	UpdateTitle(w http.ResponseWriter, r *http.Request)
	GetLatestImage(w http.ResponseWriter, r *http.Request)
}

type EditsHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type HistoryHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Clear(w http.ResponseWriter, r *http.Request)
}

// NewRouter wires the HTTP surface.
func NewRouter(threads ThreadsHandler, edits EditsHandler, history HistoryHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/threads", func(r chi.Router) {
			r.Get("/", threads.List)
			r.Post("/", threads.Create)
			r.Get("/current", threads.GetCurrent)
			r.Put("/current", threads.SetCurrent)
			r.Put("/current/title", threads.UpdateTitle)
			r.Get("/current/image", threads.GetLatestImage)
		})

		r.Route("/edits", func(r chi.Router) {
			r.Post("/", edits.Submit)
			r.Get("/status", edits.Status)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", history.List)
			r.Get("/{id}", history.Get)
			r.Delete("/", history.Clear)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
