package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/asetdesk/asetdesk/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials and returns the
// resulting principal.
func (s *Service) Authenticate(ctx context.Context, username, password string) (shared.Principal, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return shared.Principal{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return shared.Principal{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return shared.Principal{}, shared.ErrInvalidCredentials
	}
	return shared.Principal{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}
