package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hotelhub/internal/app"
	"hotelhub/internal/ratelimit"
	"hotelhub/internal/util"
	"hotelhub/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	RedisAddr     string
	RedisPassword string

	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int

	MaxUploadBytes    int64
	AllowedExtensions []string
	TrustedProxyCIDRs []string

	// PhotoDir, when set, is served under /photos/ for the local photo store.
	PhotoDir string
}

// Server exposes the hotel booking HTTP endpoints.
type Server struct {
	app               *app.App
	mux               *http.ServeMux
	maxUploadBytes    int64
	allowedExtensions map[string]struct{}
	trustedProxies    *util.TrustedProxies
	registerLimiter   *ratelimit.FixedWindowLimiter
	loginLimiter      *ratelimit.FixedWindowLimiter
	photoDir          string
}

// New constructs the server with routes configured. Rate limiting is enabled
// when a redis address is supplied.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app is required")
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}
	s := &Server{
		app:               cfg.App,
		mux:               http.NewServeMux(),
		maxUploadBytes:    normalizeMaxBytes(cfg.MaxUploadBytes),
		allowedExtensions: normalizeExtensions(cfg.AllowedExtensions),
		trustedProxies:    trusted,
		photoDir:          cfg.PhotoDir,
	}
	if cfg.RedisAddr != "" {
		registerLimit := cfg.RegisterRateLimitPerMinute
		if registerLimit <= 0 {
			registerLimit = 5
		}
		loginLimit := cfg.LoginRateLimitPerMinute
		if loginLimit <= 0 {
			loginLimit = 10
		}
		s.registerLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "hotelhub:ratelimit:register", registerLimit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init register limiter: %w", err)
		}
		s.loginLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "hotelhub:ratelimit:login", loginLimit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init login limiter: %w", err)
		}
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped with the standard middleware.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog("hotelhub", s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)

	// rooms (browse endpoints are public, mutations admin-only)
	s.mux.Handle("/api/rooms/add", s.adminOnly(s.handleAddRoom))
	s.mux.HandleFunc("/api/rooms/types", s.handleRoomTypes)
	s.mux.HandleFunc("/api/rooms/all", s.handleAllRooms)
	s.mux.HandleFunc("/api/rooms/available", s.handleAvailableRooms)
	s.mux.Handle("/api/rooms/delete/", s.adminOnly(s.handleDeleteRoom))
	s.mux.Handle("/api/rooms/update/", s.adminOnly(s.handleUpdateRoom))
	s.mux.HandleFunc("/api/rooms/", s.handleRoomByID)

	// bookings
	s.mux.Handle("/api/bookings/room/", s.authenticated(s.handleCreateBooking))
	s.mux.HandleFunc("/api/bookings/confirmation/", s.handleBookingByCode)
	s.mux.Handle("/api/bookings/all", s.adminOnly(s.handleAllBookings))
	s.mux.Handle("/api/bookings/user/", s.authenticated(s.handleBookingsByEmail))
	s.mux.Handle("/api/bookings/", s.authenticated(s.handleCancelBooking))

	// users
	s.mux.Handle("/api/users/all", s.adminOnly(s.handleAllUsers))
	s.mux.Handle("/api/users/", s.authenticated(s.handleUserByPath))

	if s.photoDir != "" {
		s.mux.Handle("/photos/", http.StripPrefix("/photos/", http.FileServer(http.Dir(s.photoDir))))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "admin.authorize", "fail", "reason", "unauthenticated")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if user.Role != domain.RoleAdmin {
			s.audit(r, "admin.authorize", "fail", "user_id", user.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r, user)
	})
}

// selfOrAdmin permits the resource owner (matched by email) or any admin.
func selfOrAdmin(user domain.User, targetEmail string) bool {
	if user.Role == domain.RoleAdmin {
		return true
	}
	return strings.EqualFold(user.Email, strings.TrimSpace(targetEmail))
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	user, ok := s.app.UserFromToken(token)
	if !ok {
		s.audit(r, "token.verify", "fail", "reason", "invalid_or_expired")
		return domain.User{}, false
	}
	return user, true
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps core errors onto HTTP statuses. notFoundStatus lets
// endpoints keep the original surface: 404 for lookups, 400 where the legacy
// contract reported missing entities as bad requests.
func writeAppError(w http.ResponseWriter, err error, notFoundStatus int) {
	switch {
	case app.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case err == app.ErrEmailAlreadyExists:
		writeError(w, http.StatusBadRequest, err.Error())
	case err == app.ErrInvalidCredentials:
		writeError(w, http.StatusUnauthorized, err.Error())
	case err == app.ErrRoomNotFound, err == app.ErrBookingNotFound, err == app.ErrUserNotFound:
		writeError(w, notFoundStatus, err.Error())
	case err == app.ErrConfirmationCodeConflict:
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

// allowRate returns true when the request is within quota. A nil limiter
// means rate limiting is disabled.
func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 10 * 1024 * 1024
	}
	return value
}

func normalizeExtensions(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = []string{".jpg", ".jpeg", ".png", ".webp"}
	}
	out := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = struct{}{}
	}
	return out
}
