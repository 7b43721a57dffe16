// Package server exposes the run history over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/KaramelBytes/lipidflow-cli/internal/render"
	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
	"github.com/KaramelBytes/lipidflow-cli/internal/store"
)

// Runs is the subset of the run store the handlers need.
type Runs interface {
	ListRuns(ctx context.Context) ([]store.Run, error)
	LoadRun(ctx context.Context, id string) (*store.Run, error)
	DeleteRun(ctx context.Context, id string) error
}

type Handler struct {
	Runs   Runs
	Render render.Options
	Log    *slog.Logger
}

func NewHandler(runs Runs, opt render.Options, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Runs: runs, Render: opt, Log: log}
}

// Router builds the chi router with logging, panic recovery and CORS for origins.
func (h *Handler) Router(origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Route("/api/runs", func(r chi.Router) {
		r.Get("/", h.ListRuns)
		r.Get("/{id}", h.GetRun)
		r.Delete("/{id}", h.DeleteRun)
		r.Get("/{id}/graph", h.GetGraph)
		r.Get("/{id}/colors", h.GetColors)
	})
	r.Get("/runs/{id}", h.ViewRun)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Runs.ListRuns(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.Runs.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph returns the run's link graph in the link JSON shape.
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	run, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run.Graph())
}

func (h *Handler) GetColors(w http.ResponseWriter, r *http.Request) {
	run, ok := h.load(w, r)
	if !ok {
		return
	}
	colors := run.Colors
	if colors == nil {
		colors = []sankey.NodeColor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"colors": colors})
}

// ViewRun renders the run as an interactive plotly page.
func (h *Handler) ViewRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.load(w, r)
	if !ok {
		return
	}
	colors := make(map[string]string, len(run.Colors))
	for _, c := range run.Colors {
		colors[c.Label] = c.Color
	}
	opt := h.Render
	if opt.Title == "" || opt.Title == render.DefaultOptions().Title {
		opt.Title = run.Name
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteHTML(w, render.NewFigure(run.Graph(), colors, opt)); err != nil {
		h.Log.Error("render run", "id", run.ID, "err", err)
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	run, err := h.Runs.LoadRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return run, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	h.Log.Error("request failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves handler on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
