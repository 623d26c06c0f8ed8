package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental-api/models"
	"carrental-api/repositories"
	"carrental-api/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	users     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	hashCost  int
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		hashCost:  bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	role := strings.TrimSpace(in.Role)

	if name == "" || email == "" || in.Password == "" {
		return nil, "", utils.ValidationError("All fields are required")
	}
	if !utils.IsValidEmail(email) {
		return nil, "", utils.ValidationError("Invalid email address")
	}
	if !utils.IsValidPassword(in.Password) {
		return nil, "", utils.ValidationError(fmt.Sprintf("Password must be at least %d characters", utils.MinPasswordLength))
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, "", utils.ValidationError("Invalid role")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", utils.ValidationError("User already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", utils.InternalError("Failed to look up user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, "", utils.InternalError("Failed to hash password", err)
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, "", utils.ValidationError("User already exists")
		}
		return nil, "", utils.InternalError("Failed to create user", err)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", utils.ValidationError("All fields are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", utils.ValidationError("User not found")
		}
		return nil, "", utils.InternalError("Failed to look up user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", utils.ValidationError("Invalid password")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Me returns the stored user for an authenticated session.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, utils.InternalError("Failed to load user", err)
	}
	return user, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", utils.InternalError("Failed to generate token", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of a session token.
func (s *AuthService) ParseToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parsing session token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
