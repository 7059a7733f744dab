package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
	healthuc "github.com/kailas-cloud/bloomprobe/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/bloomprobe/internal/usecase/lookup"
)

// LookupService answers order queries.
type LookupService interface {
	Orders(ctx context.Context, c order.Criterion) (lookupuc.Result, error)
	Candidates(ctx context.Context, c order.Criterion) ([]bloom.Serial, error)
	Probe(ctx context.Context, c order.Criterion) (lookupuc.ProbeInfo, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the lookup API.
type Server struct {
	lookup        LookupService
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(lookup LookupService, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		lookup: lookup,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCriterion, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrEncodingTruncation, http.StatusBadRequest, ErrorCodeKeyTooLong),
		sentinelHandler(domain.ErrBucketNotFound, http.StatusNotFound, ErrorCodeBucketNotFound),
		sentinelHandler(domain.ErrDescriptorsUnavailable,
			http.StatusServiceUnavailable, ErrorCodeDescriptorsUnavailable),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/orders", s.GetOrders)
		r.Get("/candidates", s.GetCandidates)
		r.Get("/probe", s.GetProbe)
	})
}

// GetOrders handles GET /v1/orders?user_id=N.
func (s *Server) GetOrders(w http.ResponseWriter, r *http.Request) {
	c, err := criterionFromQuery(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.lookup.Orders(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]OrderItem, len(res.Orders))
	for i, o := range res.Orders {
		items[i] = OrderItem{UserID: o.UserID(), OrderID: o.OrderID(), UnixTimeMs: o.UnixTimeMs()}
	}
	writeJSON(w, http.StatusOK, OrdersResponse{
		UserID:     c.UserID(),
		Orders:     items,
		Candidates: serialsToHex(res.Candidates),
		Fetched:    res.Fetched,
		Truncated:  res.Truncated,
	})
}

// GetCandidates handles GET /v1/candidates?user_id=N.
func (s *Server) GetCandidates(w http.ResponseWriter, r *http.Request) {
	c, err := criterionFromQuery(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	serials, err := s.lookup.Candidates(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CandidatesResponse{UserID: c.UserID(), Candidates: serialsToHex(serials)})
}

// GetProbe handles GET /v1/probe?user_id=N.
func (s *Server) GetProbe(w http.ResponseWriter, r *http.Request) {
	c, err := criterionFromQuery(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	p, err := s.lookup.Probe(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProbeResponse{
		UserID:  c.UserID(),
		Probe:   fmt.Sprintf("%#04x", p.Probe),
		Nibbles: p.Nibbles,
	})
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
		Status:      string(report.Status),
		Checks:      checks,
		Descriptors: report.Descriptors,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func criterionFromQuery(r *http.Request) (order.Criterion, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return order.Criterion{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidCriterion)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return order.Criterion{}, fmt.Errorf("%w: user_id must be an integer", domain.ErrInvalidCriterion)
	}
	return order.ByUser(id), nil
}

func serialsToHex(serials []bloom.Serial) []string {
	out := make([]string, len(serials))
	for i, s := range serials {
		out[i] = fmt.Sprintf("%#x", uint64(s))
	}
	return out
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

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation errors carry their own text; everything else is reduced to the
// sentinel message.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidCriterion) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrEncodingTruncation,
		domain.ErrBucketNotFound,
		domain.ErrDescriptorsUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
