package service

import (
	"context"
	"errors"
	"time"

	"reviewflow/internal/config"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/pkg/auth"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: repository.NewUserRepository(db),
		cfg:      cfg,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *AuthService) Register(ctx context.Context, in *RegisterInput) (*model.User, error) {
	if in.Role != model.RoleUser && in.Role != model.RoleSeller {
		// admins are provisioned out of band
		return nil, errors.New("role must be user or seller")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.Status != model.UserStatusActive {
		return "", nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	expire := time.Duration(s.cfg.JWT.ExpireHours) * time.Hour
	token, err := auth.GenerateToken(s.cfg.JWT.Secret, user.ID, user.Name, user.Role, expire)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
