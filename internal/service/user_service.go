package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/directory"
	"taskboard/internal/domain"
	"taskboard/internal/logger"

	"github.com/google/uuid"
)

// UserStore is the persistence surface the registry needs. Implemented by
// repository.UserRepository.
type UserStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Search(ctx context.Context, search string, page, pageSize int) (domain.Page[domain.User], error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Directory resolves an external identity to a profile.
type Directory interface {
	Lookup(ctx context.Context, externalID string) (directory.Profile, error)
}

// UserService maps external identities to internal user records,
// provisioning them on first sight.
type UserService struct {
	store UserStore
	dir   Directory
	now   func() time.Time
}

func NewUserService(store UserStore, dir Directory) *UserService {
	return &UserService{store: store, dir: dir, now: time.Now}
}

// ProvisionCurrentUser returns the user for an external identity, creating
// it from the directory profile on first contact. Safe to call
// concurrently for the same identity: the store resolves the insert race.
func (s *UserService) ProvisionCurrentUser(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", domain.ErrValidation)
	}

	existing, err := s.store.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	profile, err := s.dir.Lookup(ctx, externalID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = "Unknown"
	}
	email := strings.TrimSpace(profile.Email)
	if email == "" {
		email = externalID + "@no-reply.local"
	}

	return s.store.Create(ctx, &domain.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       name,
		Email:      email,
		CreatedAt:  s.now().UTC(),
	})
}

// GetCurrentUser looks the caller up, provisioning if absent.
func (s *UserService) GetCurrentUser(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", domain.ErrValidation)
	}

	user, err := s.store.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := s.store.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
			logger.Warn("touch last login failed", "user_id", user.ID, "error", err)
		}
		return user, nil
	}
	return s.ProvisionCurrentUser(ctx, externalID)
}

// GetUserSummaryByExternalID is a plain lookup: nil for the empty sentinel
// or an unknown identity, no provisioning.
func (s *UserService) GetUserSummaryByExternalID(ctx context.Context, externalID string) (*domain.UserSummary, error) {
	if externalID == "" {
		return nil, nil
	}

	user, err := s.store.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return user.Summary(), nil
}

// UpdateCurrentUser applies a partial profile update; blank fields are
// left untouched.
func (s *UserService) UpdateCurrentUser(ctx context.Context, externalID, name string) (*domain.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", domain.ErrValidation)
	}

	user, err := s.store.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	if trimmed := strings.TrimSpace(name); trimmed != "" {
		user.Name = trimmed
	}

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateNewUser explicitly creates a user with a known profile, unlike
// lazy provisioning. Fails Conflict when the identity is already mapped.
func (s *UserService) CreateNewUser(ctx context.Context, externalID, name, email string) (*domain.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	existing, err := s.store.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with the same external id already exists", domain.ErrConflict)
	}

	return s.store.Create(ctx, &domain.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       strings.TrimSpace(name),
		Email:      strings.TrimSpace(email),
		CreatedAt:  s.now().UTC(),
	})
}

// SearchUsers does a case-insensitive substring match on name or email,
// ordered by name.
func (s *UserService) SearchUsers(ctx context.Context, search string, page, pageSize int) (domain.Page[domain.UserSummary], error) {
	paged, err := s.store.Search(ctx, search, page, pageSize)
	if err != nil {
		return domain.Page[domain.UserSummary]{}, err
	}

	summaries := make([]domain.UserSummary, 0, len(paged.Items))
	for i := range paged.Items {
		summaries = append(summaries, *paged.Items[i].Summary())
	}

	return domain.Page[domain.UserSummary]{
		Items:      summaries,
		TotalCount: paged.TotalCount,
		Page:       paged.Page,
		PageSize:   paged.PageSize,
	}, nil
}
