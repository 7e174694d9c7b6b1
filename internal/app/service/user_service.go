package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/common/security"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
)

// Field limits enforced before any database call. The password limit is
// the pre-hash length.
const (
	MaxFullnameLen = 256
	MaxEmailLen    = 320
	MaxPasswordLen = 50
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type CreateUserRequest struct {
	Fullname    string            `json:"fullname"`
	Email       string            `json:"email"`
	Password    string            `json:"password"`
	Permissions model.Permissions `json:"permissions"`
}

// ValidateCreateUserRequest applies the field limits. It never touches
// storage, so oversized input is rejected before a connection is used.
func ValidateCreateUserRequest(req CreateUserRequest) error {
	if req.Fullname == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("fullname, email and password are required: %w", common.ErrBadRequest)
	}

	var oversized []string
	if len(req.Fullname) > MaxFullnameLen {
		oversized = append(oversized, "name too long")
	}
	if len(req.Email) > MaxEmailLen {
		oversized = append(oversized, "email too long")
	}
	if len(req.Password) > MaxPasswordLen {
		oversized = append(oversized, "password too long")
	}
	if len(oversized) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(oversized, ", "), common.ErrPayloadTooLarge)
	}
	return nil
}

// CreateUser inserts a user. A duplicate email is a distinguishable
// outcome (duplicate=true, nil error), not a failure; any other storage
// problem is returned as an error.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, bool, error) {
	if err := ValidateCreateUserRequest(req); err != nil {
		return nil, false, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Fullname:    req.Fullname,
		Email:       req.Email,
		Password:    hashedPassword,
		Permissions: req.Permissions,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	user.Password = ""
	return user, false, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}
