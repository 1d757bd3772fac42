package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"quizgame/internal/metrics"
	"quizgame/internal/middleware"
	"quizgame/internal/models"
	"quizgame/pkg/validator"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

type AuthService struct {
	users      userRepository
	sessions   SessionStore
	tokens     *middleware.TokenAuth
	metrics    *metrics.Metrics
	logger     *zap.Logger
	bcryptCost int
}

func NewAuthService(users userRepository, sessions SessionStore, tokens *middleware.TokenAuth, m *metrics.Metrics, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		metrics:    m,
		logger:     logger,
		bcryptCost: 12,
	}
}

const invalidCredentials = "Invalid username or password"

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if fields := validator.FieldErrors(req); fields != nil {
		s.metrics.AuthAttempt("register", "failure")
		return nil, &ValidationError{Fields: fields}
	}

	_, err := s.users.GetByUsername(ctx, req.Username)
	if err == nil {
		s.metrics.AuthAttempt("register", "failure")
		return nil, &ConflictError{Message: "A user with that username already exists"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			s.metrics.AuthAttempt("register", "failure")
			return nil, &ConflictError{Message: "A user with that username already exists"}
		}
		return nil, err
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.AuthAttempt("register", "success")
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		s.metrics.AuthAttempt("login", "failure")
		return nil, &UnauthorizedError{Message: invalidCredentials}
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.AuthAttempt("login", "failure")
			return nil, &UnauthorizedError{Message: invalidCredentials}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.AuthAttempt("login", "failure")
		return nil, &UnauthorizedError{Message: invalidCredentials}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.AuthAttempt("login", "success")
	return resp, nil
}

// Logout revokes the session behind token. Unknown or already revoked
// sessions are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Authenticate implements middleware.Authenticator. A token is accepted only
// while its session exists and belongs to the token's subject.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := s.sessions.Lookup(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return uuid.Nil, middleware.ErrInvalidToken
		}
		return uuid.Nil, err
	}
	if userID != claims.UserID {
		return uuid.Nil, middleware.ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.Save(ctx, claims.SessionID, user.ID, s.tokens.TTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}
