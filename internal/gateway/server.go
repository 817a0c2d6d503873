package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const userIDHeader = "X-Sharer-User-Id"

// Server is the validating edge in front of the core API. It rejects
// malformed payloads and over-limit callers before anything reaches the
// backend; valid requests are forwarded untouched.
type Server struct {
	cfg     config.GatewayConfig
	client  *Client
	limits  domain.RateLimitStore
	ceiling *rate.Limiter
	logger  *zerolog.Logger
	server  *http.Server
}

func NewServer(cfg config.GatewayConfig, client *Client, limits domain.RateLimitStore, logger *zerolog.Logger) *Server {
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	perSecond := float64(cfg.RateLimit.Requests) / window.Seconds()

	s := &Server{
		cfg:    cfg,
		client: client,
		limits: limits,
		// Global ceiling across all callers, ten times the per-user budget.
		ceiling: rate.NewLimiter(rate.Limit(perSecond*10), cfg.RateLimit.Requests*10),
		logger:  logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.passThrough)
	mux.HandleFunc("GET /users/{id}", s.passThrough)
	mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.passThrough)

	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("PATCH /items/{id}", s.handleUpdateItem)
	mux.HandleFunc("GET /items", s.authPassThrough)
	mux.HandleFunc("GET /items/search", s.passThrough)
	mux.HandleFunc("GET /items/{id}", s.authPassThrough)
	mux.HandleFunc("POST /items/{id}/comment", s.handleAddComment)

	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("PATCH /bookings/{id}", s.handleDecideBooking)
	mux.HandleFunc("GET /bookings", s.authPassThrough)
	mux.HandleFunc("GET /bookings/owner", s.authPassThrough)
	mux.HandleFunc("GET /bookings/{id}", s.authPassThrough)

	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests", s.authPassThrough)
	mux.HandleFunc("GET /requests/all", s.authPassThrough)
	mux.HandleFunc("GET /requests/{id}", s.authPassThrough)

	mux.HandleFunc("GET /health", s.handleHealth)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Str("upstream", s.cfg.ServerURL).Msg("gateway listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// passThrough forwards without requiring the sharer header; the caller is
// rate-limited by remote address.
func (s *Server) passThrough(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, clientKey(r)) {
		return
	}
	s.forward(w, r, 0, nil)
}

// authPassThrough requires a valid sharer header and forwards as-is.
func (s *Server) authPassThrough(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	s.forward(w, r, userID, nil)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, clientKey(r)) {
		return
	}

	var payload userPayload
	body, ok := s.decode(w, r, &payload)
	if !ok {
		return
	}
	if errs := validateNewUser(payload); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	s.forward(w, r, 0, body)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, clientKey(r)) {
		return
	}

	var payload userPayload
	body, ok := s.decode(w, r, &payload)
	if !ok {
		return
	}
	if errs := validateUserPatch(payload); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	s.forward(w, r, 0, body)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var payload itemPayload
	body, ok := s.decode(w, r, &payload)
	if !ok {
		return
	}
	if errs := validateNewItem(payload); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	s.forward(w, r, userID, body)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var payload itemPayload
	body, ok := s.decode(w, r, &payload)
	if !ok {
		return
	}

	s.forward(w, r, userID, body)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var payload commentPayload
	body, ok := s.decode(w, r, &payload)
	if !ok {
		return
	}
	if errs := validateNewComment(payload); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	s.forward(w, r, userID, body)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var payload bookingPayload
	body, ok := s.decode(w, r, &payload)
	if !ok {
		return
	}
	if errs := validateNewBooking(payload); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	s.forward(w, r, userID, body)
}

func (s *Server) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if _, err := strconv.ParseBool(r.URL.Query().Get("approved")); err != nil {
		writeError(w, http.StatusBadRequest, "approved query parameter must be true or false")
		return
	}

	s.forward(w, r, userID, nil)
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var payload requestPayload
	body, ok := s.decode(w, r, &payload)
	if !ok {
		return
	}
	if errs := validateNewRequest(payload); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	s.forward(w, r, userID, body)
}

// requireUser validates the sharer header and applies the per-user limit.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(userIDHeader)
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "valid "+userIDHeader+" header is required")
		return 0, false
	}

	if !s.allow(w, r, "user:"+raw) {
		return 0, false
	}

	return userID, true
}

// allow enforces the global ceiling and the per-key window. A failing limit
// store fails open: availability over strictness.
func (s *Server) allow(w http.ResponseWriter, r *http.Request, key string) bool {
	if !s.ceiling.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return false
	}

	window := time.Duration(s.cfg.RateLimit.WindowSeconds) * time.Second
	ok, err := s.limits.Allow(r.Context(), key, s.cfg.RateLimit.Requests, window)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("rate limit store error")
		return true
	}
	if !ok {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return false
	}
	return true
}

// decode reads and unmarshals the body, returning the raw bytes for
// forwarding.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return nil, false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return body, true
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request, userID int64, body []byte) {
	resp, err := s.client.Forward(r.Context(), r.Method, r.URL.Path, r.URL.Query(), userID, body)
	if err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream error")
		writeError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeValidationErrors(w http.ResponseWriter, errs fieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}
