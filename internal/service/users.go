package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
)

// CreateUser registers an account with the given role. Role gating (who may
// create admins vs staff) is the HTTP layer's job; this only enforces the
// payload and uniqueness rules.
func (s *Service) CreateUser(ctx context.Context, role string, req domain.UserCreateRequest) (domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return domain.User{}, fmt.Errorf("%w: username and email are required", store.ErrInvalidInput)
	}
	if len(req.Password) < 6 {
		return domain.User{}, fmt.Errorf("%w: password must be at least 6 characters", store.ErrInvalidInput)
	}

	if _, err := s.repo.FindUserByUsernameOrEmail(ctx, username, email); err == nil {
		return domain.User{}, fmt.Errorf("%w: username or email already in use", store.ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  hash,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user created",
		zap.String("user_id", created.ID),
		zap.String("username", created.Username),
		zap.String("role", created.Role))
	return *created, nil
}

func (s *Service) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	return s.repo.ListUsersByRole(ctx, role)
}

// GetUser loads an account, treating a role mismatch the same as a missing
// record so staff ids cannot be probed through the admin endpoints.
func (s *Service) GetUser(ctx context.Context, id string, role string) (domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if user.Role != role {
		return domain.User{}, store.ErrNotFound
	}
	return *user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, role string, req domain.UserUpdateRequest) (domain.User, error) {
	if req.Username == nil && req.Email == nil && req.Password == nil && req.Active == nil {
		return domain.User{}, fmt.Errorf("%w: empty update payload", store.ErrInvalidInput)
	}

	existing, err := s.GetUser(ctx, id, role)
	if err != nil {
		return domain.User{}, err
	}

	updated := existing
	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if username == "" {
			return domain.User{}, fmt.Errorf("%w: username must not be blank", store.ErrInvalidInput)
		}
		updated.Username = username
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return domain.User{}, fmt.Errorf("%w: email must not be blank", store.ErrInvalidInput)
		}
		updated.Email = email
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return domain.User{}, fmt.Errorf("%w: password must be at least 6 characters", store.ErrInvalidInput)
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return domain.User{}, err
		}
		updated.Password = hash
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	now := time.Now().UTC()
	updated.UpdatedAt = &now

	saved, err := s.repo.UpdateUser(ctx, updated)
	if err != nil {
		return domain.User{}, err
	}
	return *saved, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string, role string) error {
	if _, err := s.GetUser(ctx, id, role); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteUser(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("role", role))
	return nil
}

// EnsureSuperAdmin creates the bootstrap super admin account at startup if
// it does not exist. A blank password skips the bootstrap entirely.
func (s *Service) EnsureSuperAdmin(ctx context.Context, username string, email string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil
	}

	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateUser(ctx, domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hash,
		Role:      domain.RoleSuperAdmin,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	s.logger.Info("super admin bootstrapped", zap.String("username", username))
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
