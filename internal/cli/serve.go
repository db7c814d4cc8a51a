package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/boxlayout/pkg/buildinfo"
	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/observability"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/script"
	"github.com/matzehuels/boxlayout/pkg/session"
)

const (
	maxBodyBytes    = 4 << 20
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram sessions over HTTP",
		Long: `Serve keeps layout engines alive as sessions and exposes them over HTTP:

  GET    /version               build information
  POST   /sessions              create a session, optionally seeded with a script
  GET    /sessions              list live sessions
  GET    /sessions/{id}         session info and current layout
  GET    /sessions/{id}/script  edits applied so far
  POST   /sessions/{id}/edits   apply edits, returning their actions
  GET    /sessions/{id}/svg     render the current layout
  POST   /sessions/{id}/save    persist the session
  POST   /sessions/{id}/load    restore a persisted session
  DELETE /sessions/{id}         close the session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default "+defaultServerAddr+")")
	cmd.Flags().String("store-dir", "", "session store directory")
	cmd.Flags().String("mongo", "", "MongoDB URI for the session store")
	cmd.Flags().String("mongo-db", "", "MongoDB database for the session store")
	cmd.Flags().String("redis", "", "Redis address for the render cache")
	cmd.Flags().String("cache-dir", "", "render cache directory")
	cmd.Flags().Duration("cache-ttl", 0, "cache entry lifetime")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	cfg := c.cfg()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := newServer(session.NewManager(store, cfg.Layout, c.Logger), runner, c.Logger)
	return srv.serve(ctx, cfg.Server.Addr)
}

// =============================================================================
// Server
// =============================================================================

// server exposes a session manager over HTTP.
type server struct {
	sessions *session.Manager
	runner   *pipeline.Runner
	logger   *log.Logger
}

func newServer(m *session.Manager, r *pipeline.Runner, logger *log.Logger) *server {
	return &server{sessions: m, runner: r, logger: logger}
}

// serve blocks until ctx is cancelled, then shuts the listener down.
func (s *server) serve(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *server) routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
		s.observe,
	)

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/script", s.handleScript)
			r.Post("/edits", s.handleEdits)
			r.Get("/svg", s.handleSVG)
			r.Post("/save", s.handleSave)
			r.Post("/load", s.handleLoad)
		})
	})

	return r
}

// observe attaches the logger to the request context and reports each
// request to the HTTP hooks under its route pattern.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := withLogger(r.Context(), s.logger)
		hooks := observability.HTTP()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(ctx, r.Method, route)
		hooks.OnResponse(ctx, r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

// createRequest is the body of POST /sessions.
type createRequest struct {
	Name   string         `json:"name,omitempty"`
	Script *script.Script `json:"script,omitempty"`
}

// editsRequest is the body of POST /sessions/{id}/edits.
type editsRequest struct {
	Edits []script.Edit `json:"edits"`
}

// editsResponse reports applied edits. On failure Error is set and Results
// holds the edits that were applied before it.
type editsResponse struct {
	Results []session.Result `json:"results"`
	Error   *errorBody       `json:"error,omitempty"`
}

// sessionResponse is a session's info with its current layout.
type sessionResponse struct {
	session.Info
	Layout graph.Layout `json:"layout"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.sessions.Create(req.Name, req.Script)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Info: sess.Info(), Layout: sess.Snapshot()})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Info: sess.Info(), Layout: sess.Snapshot()})
}

func (s *server) handleScript(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Script())
}

func (s *server) handleEdits(w http.ResponseWriter, r *http.Request) {
	var req editsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := sess.Apply(req.Edits)
	if results == nil {
		results = []session.Result{}
	}
	if err != nil {
		s.report(r, err)
		writeJSON(w, errors.HTTPStatus(err), editsResponse{Results: results, Error: newErrorBody(err)})
		return
	}
	writeJSON(w, http.StatusOK, editsResponse{Results: results})
}

func (s *server) handleSVG(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := sess.Snapshot()
	data, err := graph.MarshalLayout(snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Layout:      sess.Script().Config(layout.DefaultConfig()),
		Formats:     []string{pipeline.FormatSVG},
		Detailed:    queryBool(r, "detailed"),
		ShowDummies: queryBool(r, "dummies"),
		Logger:      loggerFromContext(r.Context()),
	}
	artifacts, _, err := s.runner.Render(r.Context(), snap, cache.Hash(data), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": rec.ID, "saved_at": rec.SavedAt, "edits": len(rec.Script.Edits)})
}

func (s *server) handleLoad(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Info: sess.Info(), Layout: sess.Snapshot()})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *server) report(r *http.Request, err error) {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if errors.HTTPStatus(err) >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "route", route, "err", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.report(r, err)
	writeJSON(w, errors.HTTPStatus(err), map[string]*errorBody{"error": newErrorBody(err)})
}

func newErrorBody(err error) *errorBody {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return &errorBody{Code: code, Message: errors.UserMessage(err)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON request body. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode body")
	}
	return nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
