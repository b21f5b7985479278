package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kadrohq/kadro/internal/models"
	pgrepo "github.com/kadrohq/kadro/internal/repositories/postgres"
	"github.com/kadrohq/kadro/internal/utils"
)

const tokenLifetime = 12 * time.Hour

type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	Register(ctx context.Context, email, password, fullName string, role models.UserRole) (*models.User, error)
}

type authService struct {
	users  pgrepo.UserRepository
	secret []byte
}

func NewAuthService(users pgrepo.UserRepository, secret string) AuthService {
	return &authService{users: users, secret: []byte(secret)}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	const op = "AuthService.Login"

	if email == "" || password == "" {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return "", nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenLifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return token, user, nil
}

func (s *authService) Register(ctx context.Context, email, password, fullName string, role models.UserRole) (*models.User, error) {
	const op = "AuthService.Register"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}
	if role == "" {
		role = models.RoleRecruiter
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, utils.E(utils.CodeConflict, op, "email already registered", err)
	}
	return user, nil
}
