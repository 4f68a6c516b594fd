package app

import (
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"hotelhub/internal/storage"
	"hotelhub/internal/store"
	"hotelhub/internal/util"
	"hotelhub/pkg/auth"
	"hotelhub/pkg/domain"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	JWTSecret   string
	SessionTTL  time.Duration

	PhotoDir       string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	Store    store.Store
	Sessions store.SessionStore
	Photos   storage.PhotoStore
	Now      func() time.Time
}

// App is the core application service wiring together storage and domain logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
	photos   storage.PhotoStore
	now      func() time.Time
}

// New constructs the application with database storage, JWT sessions, and
// photo storage (MinIO when configured, local directory otherwise).
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("jwt secret required")
		}
		sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
	}

	photoStore := cfg.Photos
	if photoStore == nil {
		var err error
		switch {
		case cfg.MinioEndpoint != "":
			photoStore, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
			if err != nil {
				return nil, fmt.Errorf("init minio photo store: %w", err)
			}
		case cfg.PhotoDir != "":
			photoStore, err = storage.NewDirStore(cfg.PhotoDir)
			if err != nil {
				return nil, fmt.Errorf("init dir photo store: %w", err)
			}
		default:
			return nil, fmt.Errorf("photo store required (minioEndpoint or photoDir)")
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		photos:   photoStore,
		now:      cfg.Now,
	}, nil
}

// Register creates a new user with default role USER.
func (a *App) Register(email, password, firstName, lastName, role string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, validationf("email and password are required")
	}
	if !isValidEmail(email) {
		return domain.User{}, validationf("invalid email format")
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return domain.User{}, validationf("first name and last name are required")
	}
	parsedRole, err := parseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, ErrEmailAlreadyExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         parsedRole,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		if err == store.ErrDuplicateKey {
			return domain.User{}, ErrEmailAlreadyExists
		}
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = normalizeEmail(email)
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, err := a.sessions.UserIDFromToken(token)
	if err != nil {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// EnsureAdmin provisions an admin account once at startup. It is a no-op when
// either value is empty or the email is already registered.
func (a *App) EnsureAdmin(email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return fmt.Errorf("check admin email: %w", err)
	}
	if exists {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "System",
		Role:         domain.RoleAdmin,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.store.SaveUser(admin); err != nil {
		return fmt.Errorf("save admin user: %w", err)
	}
	slog.Info("admin user provisioned", "email", email)
	return nil
}

// ListUsers returns all users (admin use only).
func (a *App) ListUsers() ([]domain.User, error) {
	return a.store.ListUsers()
}

// GetUserByEmail returns one user.
func (a *App) GetUserByEmail(email string) (domain.User, error) {
	user, ok, err := a.store.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// DeleteUser removes a user and the bookings they created.
func (a *App) DeleteUser(id string) error {
	if err := a.store.DeleteUser(id); err != nil {
		if err == store.ErrNotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func parseRole(role string) (domain.UserRole, error) {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case "":
		return domain.RoleUser, nil
	case string(domain.RoleUser):
		return domain.RoleUser, nil
	case string(domain.RoleAdmin):
		return domain.RoleAdmin, nil
	default:
		return "", validationf("invalid role %q", role)
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
