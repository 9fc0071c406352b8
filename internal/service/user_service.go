package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"governance/internal/model"
	"governance/internal/notification"
	"governance/internal/repository"
	"governance/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	FullName string `json:"full_name" validate:"max=255"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=20"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager reviewer staff"`
}

type LoginUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}

// RecipientCache is the read-through cache consulted by Resolve.
type RecipientCache interface {
	Get(ctx context.Context, userID uuid.UUID) (notification.Recipient, bool, error)
	Set(ctx context.Context, r notification.Recipient) error
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	// Resolve looks up contact details for notifications.
	Resolve(ctx context.Context, id uuid.UUID) (notification.Recipient, error)
}

type userService struct {
	repo     repository.UserRepository
	cache    RecipientCache
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewUserService returns a new instance of UserService. cache may be nil.
func NewUserService(repo repository.UserRepository, cache RecipientCache, secret []byte, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{
		repo:     repo,
		cache:    cache,
		secret:   secret,
		tokenTTL: 24 * time.Hour,
		log:      log,
		now:      time.Now,
	}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	// Hash password automatically
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
		Role:     req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if appErr := repository.Classify(err); apperror.Is(appErr, apperror.CodeConflict) {
			return nil, apperror.Conflict("username or email already exists")
		}
		return nil, repository.Classify(fmt.Errorf("failed to create user: %w", err))
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, repository.Classify(fmt.Errorf("failed to load user: %w", err))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  expires.Unix(),
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenResponse{Token: tokenString, ExpiresAt: expires.UTC().Format(time.RFC3339)}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("user %s not found", id)
	}
	if err != nil {
		return nil, repository.Classify(fmt.Errorf("failed to load user: %w", err))
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, repository.Classify(fmt.Errorf("failed to list users: %w", err))
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, *mapToResponse(&u))
	}

	return responses, total, nil
}

func (s *userService) Resolve(ctx context.Context, id uuid.UUID) (notification.Recipient, error) {
	if s.cache != nil {
		r, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("user cache read failed", zap.Stringer("user_id", id), zap.Error(err))
		} else if ok {
			return r, nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notification.Recipient{}, apperror.NotFound("user %s not found", id)
	}
	if err != nil {
		return notification.Recipient{}, fmt.Errorf("failed to load user %s: %w", id, err)
	}

	r := notification.Recipient{UserID: user.ID, Email: user.Email, Name: user.DisplayName()}
	if s.cache != nil {
		if err := s.cache.Set(ctx, r); err != nil {
			s.log.Warn("user cache write failed", zap.Stringer("user_id", id), zap.Error(err))
		}
	}
	return r, nil
}

// ErrInvalidCredentials is returned by Login for any bad username/password pair.
var ErrInvalidCredentials = errors.New("invalid username or password")
