package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eargollo/indexer/internal/config"
	"github.com/eargollo/indexer/internal/db"
	"github.com/eargollo/indexer/internal/index"
	"github.com/eargollo/indexer/internal/logging"
	"github.com/eargollo/indexer/internal/scan"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const runQueueCap = 64
const defaultRunsLimit = 50

// runRequest is the body of POST /runs.
type runRequest struct {
	Pattern    string `json:"pattern"`
	StrictText *bool  `json:"strict_text,omitempty"` // nil = config default
	FilesOnly  *bool  `json:"files_only,omitempty"`  // nil = true
}

type queuedRun struct {
	id   string
	opts index.Options
}

type Server struct {
	cfg       *config.Config
	store     *db.Store // read-write (index runs)
	readStore *db.Store // optional read-only pool for GET handlers
	mux       *http.ServeMux
	log       *logrus.Entry
	runQueue  chan queuedRun // runs to execute; one worker runs them serially
}

// NewServer creates the catalog API. readStore is optional: if non-nil, GET
// handlers use it so reads do not wait behind a run's writes (WAL allows
// concurrent readers).
func NewServer(cfg *config.Config, store, readStore *db.Store, log logrus.FieldLogger) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		readStore: readStore,
		mux:       http.NewServeMux(),
		log:       logging.Component(log, "server"),
		runQueue:  make(chan queuedRun, runQueueCap),
	}
	s.routes()
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// storeForRead returns the store to use for read-only queries.
func (s *Server) storeForRead() *db.Store {
	if s.readStore != nil {
		return s.readStore
	}
	return s.store
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth())
	s.mux.HandleFunc("GET /runs", s.handleRuns())
	s.mux.HandleFunc("POST /runs", s.handleRunsStart())
	s.mux.HandleFunc("GET /runs/{id}", s.handleRun())
	s.mux.HandleFunc("GET /runs/{id}/entries", s.handleEntries())
	s.mux.HandleFunc("GET /runs/{id}/duplicates", s.handleDuplicates())
	s.mux.HandleFunc("/", s.handle404())
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).Error("encode response")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg})
}

// writeStoreError maps a catalog error to a response; sql.ErrNoRows is 404.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.log.WithError(err).WithField("path", r.URL.Path).Error("catalog query failed")
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store != nil {
			if err := s.store.DB().PingContext(r.Context()); err != nil {
				s.writeError(w, http.StatusServiceUnavailable, "db unhealthy")
				return
			}
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRunsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				s.writeError(w, http.StatusBadRequest, "limit must be a non-negative number")
				return
			}
			limit = n
		}
		runs, err := s.storeForRead().ListRuns(r.Context(), limit)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, runs)
	}
}

func (s *Server) handleRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := s.storeForRead().GetRun(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, run)
	}
}

func (s *Server) handleEntries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.storeForRead().GetRun(r.Context(), id); err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		entries, err := s.storeForRead().EntriesByRun(r.Context(), id)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) handleDuplicates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.storeForRead().GetRun(r.Context(), id); err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		groups, err := s.storeForRead().DuplicateGroups(r.Context(), id)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, groups)
	}
}

// handleRunsStart validates the pattern and queues a run. The response carries
// the run id; GET /runs/{id} returns 404 until the worker has started it.
func (s *Server) handleRunsStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Pattern == "" {
			s.writeError(w, http.StatusBadRequest, "pattern is required")
			return
		}
		if err := scan.ValidatePattern(req.Pattern); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		q := queuedRun{id: uuid.NewString(), opts: s.runOptions(req)}
		select {
		case s.runQueue <- q:
		default:
			s.writeError(w, http.StatusServiceUnavailable, "run queue full")
			return
		}
		s.log.WithField("run", q.id).Infof("queued run for %q", req.Pattern)
		s.writeJSON(w, http.StatusAccepted, map[string]string{"id": q.id})
	}
}

func (s *Server) runOptions(req runRequest) index.Options {
	opts := index.Options{
		Pattern:   req.Pattern,
		FilesOnly: true,
	}
	if s.cfg != nil {
		opts.BaseDir = s.cfg.BaseDir()
		opts.StrictText = s.cfg.StrictText()
		opts.MaxHashesPerSecond = s.cfg.MaxHashesPerSecond()
	}
	if req.StrictText != nil {
		opts.StrictText = *req.StrictText
	}
	if req.FilesOnly != nil {
		opts.FilesOnly = *req.FilesOnly
	}
	return opts
}

func (s *Server) handle404() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.runWorker(ctx)
	port := config.DefaultPort
	if s.cfg != nil {
		port = s.cfg.Port()
	}
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Infof("listening on %s", srv.Addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// runWorker executes queued runs one at a time. Runs are serialized to avoid SQLITE_BUSY.
func (s *Server) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-s.runQueue:
			if !ok {
				return
			}
			s.runOne(ctx, q)
		}
	}
}

func (s *Server) runOne(ctx context.Context, q queuedRun) {
	log := s.log.WithField("run", q.id)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic during run: %v", r)
		}
	}()
	opts := q.opts
	opts.RunID = q.id
	opts.Sink = index.NewCatalogSink(s.store, s.log.Logger)
	opts.Logger = s.log.Logger
	if opts.Exclude == nil {
		exclude, err := scan.ExcludePatternsFor(opts.BaseDir)
		if err != nil {
			log.WithError(err).Warn("reading ignore file; using defaults")
			exclude = scan.DefaultExcludePatterns()
		}
		opts.Exclude = exclude
	}
	if _, err := index.Run(ctx, &opts); err != nil {
		log.WithError(err).Error("run failed")
	}
}
