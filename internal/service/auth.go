package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/worklane/worklane/internal/config"
	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/port/database"
)

// ErrInvalidCredentials is returned for a failed login without revealing
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims is the JWT payload for an access token.
type Claims struct {
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  employee.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService resolves bearer tokens to employees and manages credentials.
type AuthService struct {
	store  database.Store
	cfg    *config.Auth
	secret []byte
}

// NewAuthService creates a new authentication service.
func NewAuthService(store database.Store, cfg *config.Auth) *AuthService {
	return &AuthService{store: store, cfg: cfg, secret: []byte(cfg.JWTSecret)}
}

// CreateEmployee registers a new employee with a bcrypt-hashed password.
func (s *AuthService) CreateEmployee(ctx context.Context, req *employee.CreateRequest) (*employee.Employee, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	e := &employee.Employee{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateEmployee(ctx, e); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

// Login authenticates an employee and issues an access token.
func (s *AuthService) Login(ctx context.Context, req employee.LoginRequest) (*employee.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	e, err := s.store.GetEmployeeByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if !e.Enabled {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(e)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &employee.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.cfg.AccessTokenTTL.Seconds()),
		Employee:    *e,
	}, nil
}

// ValidateAccessToken parses and verifies a bearer token, returning the
// employee identity it carries.
func (s *AuthService) ValidateAccessToken(token string) (*employee.Employee, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if !employee.ValidRoles[claims.Role] {
		return nil, errors.New("invalid role claim")
	}

	return &employee.Employee{
		ID:      claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
		Enabled: true,
	}, nil
}

// ResetPassword replaces an employee's password hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	e, err := s.store.GetEmployeeByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdateEmployeePassword(ctx, e.ID, string(hash))
}

// ListEmployees returns all registered employees.
func (s *AuthService) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	return s.store.ListEmployees(ctx)
}

func (s *AuthService) issueToken(e *employee.Employee) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email: e.Email,
		Name:  e.Name,
		Role:  e.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   e.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
