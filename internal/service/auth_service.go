package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studynotes/internal/cache"
	"studynotes/internal/model"
	"studynotes/internal/repository"
)

var (
	// ErrInvalidCredentials means the email/password pair did not match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken means the token is malformed, expired, or revoked
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AuthService handles registration, login, and token lifecycle.
// Logged-out tokens go onto a redis denylist until their natural expiry.
type AuthService struct {
	userRepo   repository.UserRepo
	tokenCache cache.TokenCache
	jwtSecret  []byte
	expiry     time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepo, tokenCache cache.TokenCache, jwtSecret string, expiry time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenCache: tokenCache,
		jwtSecret:  []byte(jwtSecret),
		expiry:     expiry,
	}
}

// Register creates a new account. The password is hashed by the user
// entity's BeforeSave hook.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	user := &model.User{
		Name:     name,
		Email:    email,
		Password: password,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login validates credentials and returns a signed access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	claims := &model.UserClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token: tokenString,
		User:  user,
	}, nil
}

// ValidateToken checks signature, expiry, and the logout denylist
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*model.UserClaims, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	denied, err := s.tokenCache.IsDenylisted(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if denied {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Logout denylists the token for the remainder of its lifetime
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return ErrInvalidToken
	}

	ttl := s.expiry
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.tokenCache.Denylist(ctx, tokenString, ttl)
}

func (s *AuthService) parseClaims(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
