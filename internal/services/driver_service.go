package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

const minPasswordLen = 6

type DriverService struct {
	Store repositories.Store
}

type DriverInput struct {
	Username string
	Password string
	FullName string
	Phone    string
	Email    string
}

// DriverUpdate leaves the password untouched when Password is empty.
type DriverUpdate struct {
	FullName string
	Phone    string
	Email    string
	Password string
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", domain.ValidationError{Field: "password", Msg: "password must have at least 6 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.InternalError{Msg: "could not hash password", Err: err}
	}
	return string(hash), nil
}

func (s DriverService) ListDrivers(ctx context.Context, activeOnly bool) ([]models.User, error) {
	return s.Store.Users.ListByRole(ctx, domain.RoleDriver, activeOnly)
}

func (s DriverService) getDriver(ctx context.Context, id domain.ID) (models.User, error) {
	u, err := s.Store.Users.GetByID(ctx, id)
	if err != nil {
		return u, err
	}
	if !u.IsDriver() {
		return models.User{}, domain.NotFoundError{Resource: "driver"}
	}
	return u, nil
}

func (s DriverService) RegisterDriver(ctx context.Context, in DriverInput) (models.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return models.User{}, domain.ValidationError{Field: "username", Msg: "username is required"}
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.Store.Users.Create(ctx, models.User{
		Username:     username,
		FullName:     utils.TitleName(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		Role:         domain.RoleDriver,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		return u, err
	}
	utils.LogEvent(ctx, "driver", "register", "driver registered", zap.Int64("user_id", int64(u.ID)))
	return u, nil
}

func (s DriverService) UpdateDriver(ctx context.Context, id domain.ID, in DriverUpdate) (models.User, error) {
	u, err := s.getDriver(ctx, id)
	if err != nil {
		return u, err
	}
	u.FullName = utils.TitleName(in.FullName)
	u.Phone = strings.TrimSpace(in.Phone)
	u.Email = strings.TrimSpace(in.Email)
	u.PasswordHash = ""
	if in.Password != "" {
		if u.PasswordHash, err = hashPassword(in.Password); err != nil {
			return models.User{}, err
		}
	}
	return s.Store.Users.Update(ctx, u)
}

// ToggleDriverActive flips the driver's active flag. Inactive drivers cannot
// log in or be assigned to new departures.
func (s DriverService) ToggleDriverActive(ctx context.Context, id domain.ID) (models.User, error) {
	u, err := s.getDriver(ctx, id)
	if err != nil {
		return u, err
	}
	u.Active = !u.Active
	u.PasswordHash = ""
	return s.Store.Users.Update(ctx, u)
}
