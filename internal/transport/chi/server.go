package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/query"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/result"
	"github.com/kailas-cloud/stylesearch/internal/logger"
	"github.com/kailas-cloud/stylesearch/internal/metrics"
	healthuc "github.com/kailas-cloud/stylesearch/internal/usecase/health"
)

// maxBodyBytes bounds the preferences body.
const maxBodyBytes = 64 << 10

// Searcher runs the search pipeline.
type Searcher interface {
	Search(ctx context.Context, text string, prefs *query.Preferences) ([]result.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns the status written, or 0.
type errorHandler func(w http.ResponseWriter, err error) int

// Server is the HTTP API.
type Server struct {
	search        Searcher
	health        HealthChecker
	timeout       time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. A zero timeout disables the per-request deadline.
func NewServer(search Searcher, health HealthChecker, timeout time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		search:  search,
		health:  health,
		timeout: timeout,
		logger:  log,
	}
	// Order matters: a timed-out upstream call is also wrapped in ErrSearchUnavailable.
	s.errorHandlers = []errorHandler{
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout,
			ErrorCodeTimeout, "search timed out"),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest,
			ErrorCodeValidationFailed, "query parameter q is required"),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusBadGateway,
			ErrorCodeSearchUnavailable, domain.ErrSearchUnavailable.Error()),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.Post("/products/search", s.SearchProducts)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
}

// SearchProducts handles POST /products/search?q=<text>.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query parameter q is required")
		return
	}

	prefs, err := decodePreferences(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, usage := domain.NewContextWithUsage(ctx)

	results, err := s.search.Search(ctx, text, prefs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]ProductResponse, len(results))
	for i, res := range results {
		items[i] = productToResponse(res)
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, items)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

// decodePreferences reads the optional preferences body. An empty body or
// JSON null means no preferences.
func decodePreferences(r *http.Request) (*query.Preferences, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	var req *PreferencesRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	if req == nil {
		return nil, nil
	}

	prefs := req.toDomain()
	if prefs.IsZero() {
		return nil, nil
	}
	return &prefs, nil
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set(HeaderEmbeddingTokens, strconv.Itoa(usage.Tokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) int {
		if !errors.Is(err, sentinel) {
			return 0
		}
		writeError(w, status, code, msg)
		return status
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		status := h(w, err)
		if status == 0 {
			continue
		}
		if status >= http.StatusInternalServerError {
			log.Error("search failed", zap.Int("status", status), zap.Error(err))
		} else {
			log.Warn("search rejected", zap.Int("status", status), zap.Error(err))
		}
		return
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
