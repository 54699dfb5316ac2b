// Package server is the HTTP hierarchy panel.
//
// Every request runs one overlay draw pass over all rows of the scene. GET
// requests only read the icons the pass draws; a click request runs the pass
// with a pending click on one node's icon, so the HTTP and terminal panels
// dispatch through the same overlay code.
//
//	GET  /api/rows                     decorated rows with icon states
//	POST /api/nodes/{id}/{action}      action: next, plus, minus, composition
//	GET  /api/scene                    scene file as JSON
//	GET  /api/diagram                  Graphviz DOT source
//	GET  /metrics                      Prometheus metrics
//	GET  /health                       liveness
//
// A mutex serializes all handlers, since neither the scene nor the
// controller is safe for concurrent use.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/layerdeck/pkg/buildinfo"
	lderrors "github.com/matzehuels/layerdeck/pkg/errors"
	"github.com/matzehuels/layerdeck/pkg/layers"
	"github.com/matzehuels/layerdeck/pkg/panel"
	"github.com/matzehuels/layerdeck/pkg/render/dot"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

// DefaultRowWidth is the row width, in icon units, reported in icon rects.
const DefaultRowWidth = 320

// Options configures a Server.
type Options struct {
	// IconWidth is the width of one icon slot.
	IconWidth int
	// RowWidth is the width of every row.
	RowWidth int
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer
	// Save persists the scene after every applied click. Nil keeps changes
	// in memory.
	Save func(*scene.Scene) error
	// Logger receives request logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server serves one scene.
type Server struct {
	mu       sync.Mutex
	scene    *scene.Scene
	ctrl     *layers.Controller
	overlay  *panel.Overlay
	rowWidth int

	gatherer prometheus.Gatherer
	save     func(*scene.Scene) error
	logger   *log.Logger
}

// New returns a server for s.
func New(s *scene.Scene, opts Options) *Server {
	rowWidth := opts.RowWidth
	if rowWidth <= 0 {
		rowWidth = DefaultRowWidth
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctrl := layers.New(s)
	return &Server{
		scene:    s,
		ctrl:     ctrl,
		overlay:  panel.New(ctrl, panel.Options{IconWidth: opts.IconWidth}),
		rowWidth: rowWidth,
		gatherer: gatherer,
		save:     opts.Save,
		logger:   logger,
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.getHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", s.getInfo)
		r.Get("/rows", s.getRows)
		r.Get("/scene", s.getScene)
		r.Get("/diagram", s.getDiagram)
		r.Post("/nodes/{id}/{action}", s.postAction)
	})
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	nodes := s.scene.Len()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"app":     "layerdeck",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"nodes":   nodes,
	})
}

func (s *Server) getRows(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, _ := s.pass(r.Context(), nil)
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) getScene(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := scene.Marshal(s.scene, scene.FormatJSON)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	src := dot.ToDOT(s.scene, dot.Options{Detailed: r.URL.Query().Get("detailed") == "true"})
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(src))
}

// ActionResponse is the body returned for an applied click.
type ActionResponse struct {
	Node        RowView                 `json:"node"`
	Icon        string                  `json:"icon"`
	Composition *scene.CompositionEntry `json:"composition,omitempty"`
	Rows        []RowView               `json:"rows"`
}

func (s *Server) postAction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, lderrors.Wrap(lderrors.ErrCodeInvalidInput, err, "invalid node id %q", chi.URLParam(r, "id")))
		return
	}
	icon, err := parseIcon(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.scene.Node(id)
	if n == nil {
		writeError(w, lderrors.New(lderrors.ErrCodeNodeNotFound, "no node with id %s", id))
		return
	}

	_, res := s.pass(r.Context(), &target{id: id, icon: icon})
	if len(res.Clicks) == 0 {
		writeJSON(w, http.StatusConflict, errorBody{
			Code:  string(lderrors.ErrCodeInvalidAction),
			Error: icon.String() + " is not offered on " + n.Path(),
		})
		return
	}
	if s.save != nil {
		if err := s.save(s.scene); err != nil {
			writeError(w, lderrors.Wrap(lderrors.ErrCodeInternal, err, "save scene"))
			return
		}
	}

	// Redraw so the response shows the state after the click.
	rows, _ := s.pass(r.Context(), nil)
	resp := ActionResponse{
		Icon:        icon.String(),
		Composition: res.Clicks[0].Composition,
		Rows:        rows,
	}
	for _, row := range rows {
		if row.ID == id.String() {
			resp.Node = row
			break
		}
	}
	s.logger.Debug("applied", "icon", icon, "node", n.Path())
	writeJSON(w, http.StatusOK, resp)
}

// pass runs one draw pass. Callers hold s.mu.
func (s *Server) pass(ctx context.Context, click *target) ([]RowView, panel.Result) {
	h := &rowHost{scene: s.scene, ctrl: s.ctrl, rowWidth: s.rowWidth, click: click}
	res := s.overlay.Draw(ctx, h)
	return h.rows, res
}

func parseIcon(action string) (panel.Icon, error) {
	if action == "composition" {
		return panel.IconAddComposition, nil
	}
	a, err := layers.ParseAction(action)
	if err != nil {
		return 0, err
	}
	return panel.ActionIcon(a), nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, lderrors.Status(err), errorBody{Code: string(lderrors.GetCode(err)), Error: lderrors.UserMessage(err)})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
