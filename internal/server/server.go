// Package server exposes the dashboard over HTTP: an HTML page with load and
// navigation forms, a JSON API, and health, readiness and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/dashboard"
	"github.com/Sternrassler/swapi-client/pkg/logging"
	"github.com/Sternrassler/swapi-client/pkg/metrics"
	"github.com/Sternrassler/swapi-client/pkg/pagination"
	"github.com/Sternrassler/swapi-client/pkg/render"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// readyTimeout bounds the page store ping of /ready.
	readyTimeout = 2 * time.Second

	// maxBodyBytes limits JSON request bodies.
	maxBodyBytes = 1 << 10
)

// tables maps URL segments to document tables.
var tables = map[string]render.TableID{
	"characters": render.CharacterTable,
	"planets":    render.PlanetTable,
}

// Options configures the server.
type Options struct {
	// AllowedOrigins for CORS. Empty allows all origins.
	AllowedOrigins []string
}

// Server routes HTTP requests to a dashboard.
type Server struct {
	dash    *dashboard.Dashboard
	router  *mux.Router
	handler http.Handler
	logger  zerolog.Logger
}

// New creates a server for dash.
func New(dash *dashboard.Dashboard, opts Options) *Server {
	if dash == nil {
		panic("dashboard cannot be nil")
	}

	s := &Server{
		dash:   dash,
		router: mux.NewRouter(),
		logger: logging.NewLogger("server"),
	}
	s.routes()

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(s.router)

	return s
}

// Handler returns the root handler including CORS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Form targets of the HTML page. They redirect back to the page.
	r.HandleFunc("/load/{table:characters|planets}", s.handleFormLoad).Methods(http.MethodPost)
	r.HandleFunc("/page/{direction:next|previous}", s.handleFormPage).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/page", s.handleGetPage).Methods(http.MethodGet)
	api.HandleFunc("/page", s.handleSetPage).Methods(http.MethodPut)
	api.HandleFunc("/page/{direction:next|previous}", s.handleStepPage).Methods(http.MethodPost)
	api.HandleFunc("/{table:characters|planets}/load", s.handleLoad).Methods(http.MethodPost)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.dash.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Page store not reachable")
		http.Error(w, "Page store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Ready")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.dash.RefreshPage(r.Context()); err != nil {
		s.internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, s.dash.Snapshot()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render page")
	}
}

func (s *Server) handleFormLoad(w http.ResponseWriter, r *http.Request) {
	table := tables[mux.Vars(r)["table"]]

	// Load failures are shown in the error element of the page.
	if err := s.dash.Load(r.Context(), table); err != nil {
		s.logger.Debug().Err(err).Str("table", string(table)).Msg("Form load failed")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.step(r.Context(), mux.Vars(r)["direction"]); err != nil {
		s.internalError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

// pageBody is the JSON body of the page endpoints.
type pageBody struct {
	Page int `json:"page"`
}

// errorBody is the JSON body of failed API calls.
type errorBody struct {
	Error string `json:"error"`
	Class string `json:"class,omitempty"`
	Page  int    `json:"page,omitempty"`
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.CurrentPage(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody{Page: page})
}

func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	var body pageBody
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	page, err := s.dash.SetPage(r.Context(), body.Page)
	if errors.Is(err, pagination.ErrInvalidPage) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Page: page})
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody{Page: page})
}

func (s *Server) handleStepPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.step(r.Context(), mux.Vars(r)["direction"])
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody{Page: page})
}

func (s *Server) step(ctx context.Context, direction string) (int, error) {
	if direction == "previous" {
		return s.dash.PreviousPage(ctx)
	}
	return s.dash.NextPage(ctx)
}

// loadResponse is the JSON body of a successful table load.
type loadResponse struct {
	Page  int          `json:"page"`
	Table render.Table `json:"table"`
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	table := tables[mux.Vars(r)["table"]]

	if err := s.dash.Load(r.Context(), table); err != nil {
		// Only SWAPI failures carry a class; anything else is ours.
		if client.ClassOf(err) == "" {
			s.internalError(w, err)
			return
		}
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error: dashboard.FailureMessage(table, err),
			Class: string(client.ClassOf(err)),
		})
		return
	}

	snap := s.dash.Snapshot()
	tbl, _ := snap.Table(table)
	writeJSON(w, http.StatusOK, loadResponse{Page: snap.Page, Table: tbl})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("Request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}
