package authsession

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"quizgame/internal/apiclient"
	"quizgame/internal/models"
)

// API is the part of the quiz server the session talks to.
type API interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*models.User, error)
}

// Session holds the signed-in user, if any. Without a token the player is a
// guest. Failed calls leave the session as it was.
type Session struct {
	api    API
	store  TokenStore
	logger *zap.Logger

	token string
	user  *models.User
}

func New(api API, store TokenStore, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{api: api, store: store, logger: logger}
}

func (s *Session) Token() string { return s.token }
func (s *Session) User() *models.User { return s.user }
func (s *Session) IsGuest() bool { return s.token == "" }

// Restore loads a persisted token and fetches its profile. A token the server
// rejects is forgotten; on any other failure it is kept for the next attempt.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user, err := s.api.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			s.logger.Info("stored token rejected, signing out")
			s.token, s.user = "", nil
			return s.store.Clear()
		}
		s.token = token
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.token, s.user = token, user
	return nil
}

func (s *Session) Register(ctx context.Context, username, email, password string) error {
	resp, err := s.api.Register(ctx, models.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.adopt(resp)
}

func (s *Session) Login(ctx context.Context, username, password string) error {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.adopt(resp)
}

// Logout tells the server to revoke the token and clears the local session
// even when that call fails. A persisted token is revoked too when the session
// was never restored.
func (s *Session) Logout(ctx context.Context) error {
	token := s.token
	if token == "" {
		stored, err := s.store.Load()
		if err != nil {
			s.logger.Warn("failed to read stored token", zap.Error(err))
		}
		token = stored
	}
	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.logger.Warn("logout request failed", zap.Error(err))
		}
	}
	s.token, s.user = "", nil
	return s.store.Clear()
}

// FetchProfile refreshes the profile for the current token.
func (s *Session) FetchProfile(ctx context.Context) (*models.User, error) {
	if s.token == "" {
		return nil, apiclient.ErrUnauthorized
	}
	user, err := s.api.Profile(ctx, s.token)
	if err != nil {
		return nil, err
	}
	s.user = user
	return user, nil
}

func (s *Session) adopt(resp *models.AuthResponse) error {
	if resp == nil || resp.Token == "" {
		return errors.New("server returned no token")
	}
	if err := s.store.Save(resp.Token); err != nil {
		return err
	}
	s.token, s.user = resp.Token, resp.User
	return nil
}
