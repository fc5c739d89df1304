package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gooze.dev/pkg/mureport/internal/domain"
	"gooze.dev/pkg/mureport/internal/render"
	m "gooze.dev/pkg/mureport/internal/model"
)

const shutdownTimeout = 5 * time.Second

// Server serves the report over local HTTP.
type Server struct {
	renderer    *render.Renderer
	resourceDir m.Path
	port        int
}

// NewServer creates a server for a built session.
func NewServer(session *Session, resourceDir m.Path, port int) *Server {
	return &Server{renderer: session.Renderer, resourceDir: resourceDir, port: port}
}

// Handler returns the report's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleStart)
	mux.HandleFunc("GET /file/", s.handleFile)
	mux.HandleFunc("GET /api/traces", s.handleTraceList)
	mux.HandleFunc("GET /trace", s.handleTrace)

	staticDir := filepath.Join(string(s.resourceDir), "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	return mux
}

// Serve runs the server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Serving mutation report", "address", "http://"+srv.Addr+"/")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, http.StatusOK, s.renderer.RenderStart())
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	p := m.Path(strings.TrimPrefix(r.URL.Path, "/file/"))

	if !s.renderer.ValidPath(p) {
		writeHTML(w, http.StatusNotFound, s.renderer.RenderStartWithError(fmt.Sprintf("file not found: %s", p)))

		return
	}

	page, err := s.renderer.RenderFile(p)
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	writeHTML(w, http.StatusOK, page)
}

func (s *Server) handleTraceList(w http.ResponseWriter, r *http.Request) {
	mutationID, err := strconv.Atoi(r.URL.Query().Get("mutation_id"))
	if err != nil {
		http.Error(w, "invalid mutation_id", http.StatusBadRequest)

		return
	}

	fragment, err := s.renderer.RenderTraceList(r.Context(), mutationID)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)

		return
	}

	if err != nil {
		s.internalError(w, r, err)

		return
	}

	writeHTML(w, http.StatusOK, fragment)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	mutationID, err := strconv.Atoi(query.Get("mutation_id"))
	if err != nil {
		http.Error(w, "invalid mutation_id", http.StatusBadRequest)

		return
	}

	if _, err := strconv.Atoi(query.Get("entry_point_id")); err != nil {
		http.Error(w, "invalid entry_point_id", http.StatusBadRequest)

		return
	}

	defIDs, err := parseDefIDs(query.Get("definition_ids"))
	if err != nil {
		http.Error(w, "invalid definition_ids", http.StatusBadRequest)

		return
	}

	page, err := s.renderer.RenderTrace(mutationID, defIDs)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)

		return
	}

	if err != nil {
		s.internalError(w, r, err)

		return
	}

	writeHTML(w, http.StatusOK, page)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// parseDefIDs parses the comma separated definition id list of a trace link.
func parseDefIDs(raw string) ([]m.DefID, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty definition id list")
	}

	parts := strings.Split(strings.TrimSuffix(raw, ","), ",")

	defIDs := make([]m.DefID, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("definition id %q: %w", part, err)
		}

		defIDs = append(defIDs, m.DefID(id))
	}

	return defIDs, nil
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
