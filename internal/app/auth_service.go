package app

import (
	"context"
	"errors"

	"github.com/enumclawevents/opencircle-api/internal/domain"
)

// PublisherReader is the lookup needed to resolve publisher credentials.
type PublisherReader interface {
	GetPublisherByKey(ctx context.Context, apiKey string) (domain.Publisher, error)
}

// AuthService resolves presented credentials to principals. The admin
// secret is injected at construction so tests can run with distinct
// secrets; it is never read from the environment here.
type AuthService struct {
	adminKey string
	repo     PublisherReader
}

func NewAuthService(adminKey string, repo PublisherReader) *AuthService {
	return &AuthService{
		adminKey: adminKey,
		repo:     repo,
	}
}

// RequireAdmin checks the presented value against the shared admin
// secret. A missing configured secret fails closed with a distinct error.
func (s *AuthService) RequireAdmin(presented string) error {
	if s.adminKey == "" {
		return domain.ErrAdminKeyNotConfigured
	}
	if presented != s.adminKey {
		return domain.ErrInvalidAdminKey
	}
	return nil
}

// ResolvePublisher maps an API key to its publisher. An unknown key and a
// deactivated publisher fail with the same error so callers cannot probe
// which keys exist.
func (s *AuthService) ResolvePublisher(ctx context.Context, apiKey string) (domain.Publisher, error) {
	if apiKey == "" {
		return domain.Publisher{}, domain.ErrPublisherKeyRequired
	}

	pub, err := s.repo.GetPublisherByKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, domain.ErrPublisherNotFound) {
			return domain.Publisher{}, domain.ErrInvalidPublisherKey
		}
		return domain.Publisher{}, err
	}
	if !pub.Active {
		return domain.Publisher{}, domain.ErrInvalidPublisherKey
	}
	return pub, nil
}
