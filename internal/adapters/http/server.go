package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/aretw0/domino/internal/logging"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/eventbus"
	"github.com/aretw0/domino/pkg/session"
	"github.com/aretw0/domino/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server serves dominoes stored behind a session manager.
type Server struct {
	manager   *session.Manager
	logger    *slog.Logger
	newID     func() string
	listCache *storage.Cache[[]string]
	events    *eventbus.Bus[string, domain.CommitEvent]
	metrics   http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the random UUIDs given to created dominoes.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// WithListCache serves GET /dominoes from c while it is fresh.
func WithListCache(c *storage.Cache[[]string]) Option {
	return func(s *Server) {
		s.listCache = c
	}
}

// WithEvents enables GET /dominoes/{id}/events, fed by bus.
func WithEvents(bus *eventbus.Bus[string, domain.CommitEvent]) Option {
	return func(s *Server) {
		s.events = bus
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP API over manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		manager: manager,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/dominoes", func(r chi.Router) {
		r.Post("/", s.create)
		r.Get("/", s.list)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.get)
			r.Patch("/", s.update)
			r.Delete("/", s.delete)
			r.Put("/defaults", s.setDefaults)
			r.Post("/reset", s.reset)
			r.Post("/clear", s.clear)
			r.Delete("/fields/{field}", s.resetField)
			if s.events != nil {
				r.Get("/events", s.stream)
			}
		})
	})
	return r
}

// View is the JSON shape of a domino.
type View struct {
	ID         string        `json:"id"`
	Values     domain.Values `json:"values"`
	Defaults   domain.Values `json:"defaults"`
	Mutations  domain.Values `json:"mutations"`
	IsModified bool          `json:"is_modified"`
	Computed   []string      `json:"computed,omitempty"`
}

func newView(id string, d *domain.Domino) View {
	return View{
		ID:         id,
		Values:     d.Values(),
		Defaults:   d.Defaults(),
		Mutations:  d.Mutations(),
		IsModified: d.IsModified(),
		Computed:   d.ComputedKeys(),
	}
}

// CreateRequest is the body of POST /dominoes.
type CreateRequest struct {
	ID       string        `json:"id,omitempty"`
	Defaults domain.Values `json:"defaults"`
}

// ValuesRequest is the body of PATCH /dominoes/{id} and PUT /dominoes/{id}/defaults.
type ValuesRequest struct {
	Values domain.Values `json:"values"`
}

// ListResponse is the body of GET /dominoes.
type ListResponse struct {
	IDs []string `json:"ids"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	id := body.ID
	if id == "" {
		id = s.newID()
	}

	d, err := s.manager.LoadOrCreate(r.Context(), id, body.Defaults)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.refreshList(r)
	s.writeJSON(w, http.StatusCreated, newView(id, d))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.listCache != nil {
		if primed, _ := s.listCache.IsPrimed(ctx); primed {
			if entry, err := s.listCache.Get(ctx); err == nil && entry != nil {
				s.writeJSON(w, http.StatusOK, ListResponse{IDs: entry.Value})
				return
			}
		}
	}

	ids, err := s.listIDs(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ListResponse{IDs: ids})
}

// listIDs reads the store and refreshes the list cache.
func (s *Server) listIDs(r *http.Request) ([]string, error) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	slices.Sort(ids)
	if s.listCache != nil {
		if err := s.listCache.Set(r.Context(), ids); err != nil {
			s.logger.Warn("list cache write failed", "err", err)
		}
	}
	return ids, nil
}

func (s *Server) refreshList(r *http.Request) {
	if s.listCache == nil {
		return
	}
	if _, err := s.listIDs(r); err != nil {
		s.logger.Warn("list cache refresh failed", "err", err)
	}
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := s.manager.Load(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newView(id, d))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var body ValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.apply(w, r, domain.OpUpdate, func(d *domain.Domino) *domain.Domino {
		return d.Update(body.Values)
	})
}

func (s *Server) setDefaults(w http.ResponseWriter, r *http.Request) {
	var body ValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.apply(w, r, domain.OpSetDefaults, func(d *domain.Domino) *domain.Domino {
		return d.SetDefaults(body.Values)
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, domain.OpReset, (*domain.Domino).Reset)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, domain.OpClear, (*domain.Domino).Clear)
}

func (s *Server) resetField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	s.apply(w, r, domain.OpResetField, func(d *domain.Domino) *domain.Domino {
		return d.ResetField(field)
	})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, op domain.Op, fn func(*domain.Domino) *domain.Domino) {
	id := chi.URLParam(r, "id")
	d, err := s.manager.Apply(r.Context(), id, op, fn)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newView(id, d))
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.manager.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.refreshList(r)
	w.WriteHeader(http.StatusNoContent)
}

// stream sends every commit of one domino as a server-sent event.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}
	id := chi.URLParam(r, "id")

	events := make(chan domain.CommitEvent, 16)
	unsubscribe := s.events.Subscribe(id, func(e domain.CommitEvent) {
		select {
		case events <- e:
		default:
			s.logger.Warn("dropping commit event for slow subscriber", "domino_id", id)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Error("failed to encode commit event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: commit\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		s.writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, domain.ErrInvalidID):
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Error("request failed", "err", err)
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}
