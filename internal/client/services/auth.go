package services

import (
	"context"
	"fmt"

	"github.com/monotes/monotes/internal/client/remote"
	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/logging"
)

const maxUsernameLen = 64

// AuthService validates credentials and drives the remote auth flow.
type AuthService struct {
	remote remote.Client
	log    logging.Logger
}

func NewAuthService(rc remote.Client, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthService{remote: rc, log: log}
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username must not be empty", common.ErrValidation)
	}
	if len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username longer than %d characters", common.ErrValidation, maxUsernameLen)
	}
	return nil
}

// Register creates an account on the remote store.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}
	return s.remote.Register(ctx, username, password)
}

// Login authenticates against the remote store. On success the remote client
// holds the session tokens.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}
	if err := s.remote.Login(ctx, username, password); err != nil {
		return err
	}
	s.log.Info(ctx, "logged in", "user", s.remote.CurrentUserID())
	return nil
}

// Logout drops the session.
func (s *AuthService) Logout(ctx context.Context) {
	s.remote.Logout()
	s.log.Info(ctx, "logged out")
}

// CurrentUserID returns the signed-in owner id, or "" when anonymous.
func (s *AuthService) CurrentUserID() string {
	return s.remote.CurrentUserID()
}
