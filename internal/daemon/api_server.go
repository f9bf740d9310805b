package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"crosswalk/internal/cachestore"
	"crosswalk/internal/config"
	"crosswalk/internal/identity"
	"crosswalk/internal/logging"
	"crosswalk/internal/metrics"
	"crosswalk/internal/resolver"
	"crosswalk/internal/services"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

// statusResponse is the payload for GET /api/status.
type statusResponse struct {
	Running      bool              `json:"running"`
	PID          int               `json:"pid"`
	DatabasePath string            `json:"database_path"`
	LockFilePath string            `json:"lock_file_path"`
	APIBind      string            `json:"api_bind,omitempty"`
	Cache        *cachestore.Stats `json:"cache,omitempty"`
	Metrics      metrics.Snapshot  `json:"metrics"`
}

// searchResponse wraps cache search results.
type searchResponse struct {
	Results []cachestore.Row `json:"results"`
}

// clearResponse reports rows removed by DELETE /api/cache.
type clearResponse struct {
	Removed int64 `json:"removed"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/resolve", srv.handleResolve)
	mux.HandleFunc("/api/cache", srv.handleCacheClear)
	mux.HandleFunc("/api/cache/stats", srv.handleCacheStats)
	mux.HandleFunc("/api/cache/search", srv.handleCacheSearch)
	mux.HandleFunc("/api/cache/mappings", srv.handleCacheMappings)
	mux.HandleFunc("/api/cache/optimize", srv.handleCacheOptimize)
	mux.HandleFunc("/api/anime/lookup", srv.handleAnimeLookup)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil {
		return ""
	}
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	payload := statusResponse{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		APIBind:      status.APIAddr,
		Metrics:      s.daemon.MetricsSnapshot(),
	}
	if stats, err := s.daemon.CacheStats(r.Context()); err != nil {
		s.log().Warn("cache stats unavailable", logging.Error(err))
	} else {
		payload.Cache = &stats
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req resolver.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := s.daemon.Resolve(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *apiServer) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.daemon.CacheStats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handleCacheSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()

	var contentType identity.ContentType
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		parsed, err := identity.ParseContentType(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "type must be movie or series")
			return
		}
		contentType = parsed
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	rows, err := s.daemon.SearchCache(r.Context(), query.Get("id"), contentType, limit, offset)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, searchResponse{Results: rows})
}

func (s *apiServer) handleCacheMappings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var record identity.Record
	if err := decodeJSON(w, r, &record); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stored, err := s.daemon.AddMapping(r.Context(), record)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

func (s *apiServer) handleCacheOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	result, err := s.daemon.Optimize(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var (
		removed int64
		err     error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("older_than_days")); raw != "" {
		days, parseErr := strconv.Atoi(raw)
		if parseErr != nil || days < 0 {
			s.writeError(w, http.StatusBadRequest, "older_than_days must be a non-negative integer")
			return
		}
		removed, err = s.daemon.ClearOlderThan(r.Context(), days)
	} else {
		removed, err = s.daemon.ClearCache(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}

func (s *apiServer) handleAnimeLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()

	var namespace, raw string
	for _, key := range []string{"mal", "kitsu", "anidb", "anilist"} {
		value := strings.TrimSpace(query.Get(key))
		if value == "" {
			continue
		}
		if namespace != "" {
			s.writeError(w, http.StatusBadRequest, "specify exactly one of mal, kitsu, anidb, anilist")
			return
		}
		namespace = key
		raw = value
	}
	if namespace == "" {
		s.writeError(w, http.StatusBadRequest, "specify exactly one of mal, kitsu, anidb, anilist")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s id %q", namespace, raw))
		return
	}
	entry, ok := s.daemon.AnimeLookup(namespace, id)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no static mapping for %s %d", namespace, id))
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
