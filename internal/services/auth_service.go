package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

// ErrInvalidCredentials covers unknown users, wrong passwords and disabled accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidToken is returned for missing, expired or tampered tokens.
var ErrInvalidToken = errors.New("invalid token")

type AuthService struct {
	Store  repositories.Store
	Secret []byte
	TTL    time.Duration
	Clock  utils.Clock
}

type Claims struct {
	UserID domain.ID   `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s AuthService) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

// Login checks the password and issues a signed token.
func (s AuthService) Login(ctx context.Context, username, password string) (string, models.User, error) {
	u, err := s.Store.Users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, err
	}
	if !u.Active {
		return "", models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}
	token, err := s.Issue(u)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

func (s AuthService) Issue(u models.User) (string, error) {
	now := s.Clock.Now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "could not sign token", Err: err}
	}
	return signed, nil
}

// Parse validates a token and returns the caller it identifies.
func (s AuthService) Parse(token string) (domain.RequestContext, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Clock.Now),
	)
	if err != nil || !parsed.Valid || claims.UserID <= 0 {
		return domain.RequestContext{}, ErrInvalidToken
	}
	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleDriver {
		return domain.RequestContext{}, ErrInvalidToken
	}
	return domain.RequestContext{UserID: claims.UserID, Role: claims.Role}, nil
}

// EnsureAdmin creates the admin account on first start; an existing user is left alone.
func (s AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.Store.Users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !domain.IsNotFound(err) {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.Store.Users.Create(ctx, models.User{
		Username: username, FullName: "Administrador", Role: domain.RoleAdmin, Active: true, PasswordHash: hash,
	})
	if domain.IsConflict(err) {
		return nil
	}
	if err == nil {
		utils.LogEvent(ctx, "auth", "seed_admin", "admin account created")
	}
	return err
}
