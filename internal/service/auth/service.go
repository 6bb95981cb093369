package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"icecream-storefront/internal/domain"
	businessrepo "icecream-storefront/internal/repository/business"
	userrepo "icecream-storefront/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
)

// Service handles registration, login and profile flows.
type Service struct {
	users       userRepo
	businesses  businessRepo
	passwordMin int
}

type userRepo interface {
	Create(ctx context.Context, in userrepo.CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type businessRepo interface {
	Create(ctx context.Context, in businessrepo.CreateBusinessInput) (*domain.Business, error)
	Update(ctx context.Context, id int64, in businessrepo.UpdateBusinessInput) (*domain.Business, error)
}

// New creates a Service with sane defaults.
func New(users userrepo.Repository, businesses businessrepo.Repository) *Service {
	return &Service{
		users:       users,
		businesses:  businesses,
		passwordMin: 8,
	}
}

// RegisterInput captures the one-step business signup payload.
type RegisterInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
}

// Register creates a business and its first customer account together.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	businessName := strings.TrimSpace(in.BusinessName)
	if username == "" || in.Password == "" || businessName == "" {
		return nil, fmt.Errorf("%w: username, password and business name are required", domain.ErrInvalidInput)
	}
	if len(in.Password) < s.passwordMin {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, s.passwordMin)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	biz, err := s.businesses.Create(ctx, businessrepo.CreateBusinessInput{
		Name:    businessName,
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	})
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, userrepo.CreateUserInput{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
		BusinessID:   &biz.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	user.Business = biz
	return user, nil
}

// Login verifies credentials and returns the account with business details.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Identify resolves the per-request identity header to an account.
func (s *Service) Identify(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ProfileUpdate carries the editable business fields; empty means unchanged.
type ProfileUpdate struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// UpdateProfile updates the caller's business record and returns the fresh
// profile.
func (s *Service) UpdateProfile(ctx context.Context, user *domain.User, in ProfileUpdate) (*domain.User, error) {
	if user.BusinessID == nil {
		return nil, fmt.Errorf("%w: account has no business to update", domain.ErrInvalidInput)
	}
	if _, err := s.businesses.Update(ctx, *user.BusinessID, businessrepo.UpdateBusinessInput{
		Name:    optional(in.Name),
		Phone:   optional(in.Phone),
		Email:   optional(in.Email),
		Address: optional(in.Address),
	}); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
