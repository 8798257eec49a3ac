package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/repo/postgres"
	"github.com/openshelf/libris/pkg/auth"
	"github.com/openshelf/libris/pkg/config"
	"github.com/openshelf/libris/pkg/events"
	"github.com/openshelf/libris/pkg/logger"
)

// AuthService owns the account lifecycle: registration, login, the
// unapproved-to-approved transition and the orthogonal admin grant.
type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error)
	Approve(ctx context.Context, id int64) (*domain.User, error)
	Promote(ctx context.Context, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type authService struct {
	userRepo postgres.UserRepository
	eventBus events.Publisher
	config   *config.Config
}

func NewAuthService(userRepo postgres.UserRepository, eventBus events.Publisher, config *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		eventBus: eventBus,
		config:   config,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResponse{Token: token, UserID: user.ID}, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// Same error as a wrong password: do not reveal which emails exist.
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsApproved {
		return nil, domain.ErrPendingApproval
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResponse{Token: token, UserID: user.ID}, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// Approve transitions the target to the approved state. Approving an already
// approved user is a no-op that succeeds.
func (s *authService) Approve(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if user.IsApproved {
		return user, nil
	}

	user, err = s.userRepo.SetApproved(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.eventBus.Publish(ctx, events.UserApproved, events.UserApprovedEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		ApprovedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish user.approved", "error", err, "user_id", user.ID)
	}

	return user, nil
}

// Promote grants the admin flag. Orthogonal to approval; idempotent.
func (s *authService) Promote(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.SetAdmin(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	token, err := auth.NewAccessToken(
		user.ID,
		user.Email,
		user.IsAdmin,
		user.IsApproved,
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}
	return token, nil
}
