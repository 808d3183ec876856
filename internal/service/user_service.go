package service

import (
	"context"
	"strings"

	"livefeed/internal/auth"
	"livefeed/internal/models"
	"livefeed/internal/repository"
	"livefeed/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	guard    *auth.Guard
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// LoginResult is a fresh access token plus the authenticated user's ID.
type LoginResult struct {
	Token  string
	UserID uint
}

func NewUserService(userRepo repository.UserRepository, guard *auth.Guard) *UserService {
	return &UserService{
		userRepo: userRepo,
		guard:    guard,
	}
}

// Signup registers a new account. A taken email address is reported as a
// field violation rather than a separate error shape.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	var violations []models.FieldViolation

	email := strings.TrimSpace(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		violations = append(violations, models.FieldViolation{Field: "email", Message: "Please enter a valid email."})
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		violations = append(violations, models.FieldViolation{Field: "password", Message: "Password must be at least 5 characters long."})
	}
	if err := validation.ValidateName(in.Name); err != nil {
		violations = append(violations, models.FieldViolation{Field: "name", Message: "Name must not be empty."})
	}

	if len(violations) == 0 {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			violations = append(violations, models.FieldViolation{Field: "email", Message: "E-Mail address already exists!"})
		}
	}

	if len(violations) > 0 {
		return nil, models.NewValidationError("Validation failed.", violations...)
	}

	hashed, err := auth.HashPassword(strings.TrimSpace(in.Password))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Name:     strings.TrimSpace(in.Name),
		Status:   models.DefaultUserStatus,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues an access token. Unknown address
// and wrong password produce the same rejection.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError()
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, models.NewUnauthenticatedError()
	}

	token, err := s.guard.Issue(user.ID, user.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// GetStatus returns a user's status line.
func (s *UserService) GetStatus(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// UpdateStatus replaces a user's status line.
func (s *UserService) UpdateStatus(ctx context.Context, userID uint, status string) error {
	if err := validation.ValidateStatus(status); err != nil {
		return models.NewValidationError("Validation failed.", models.FieldViolation{
			Field:   "status",
			Message: "Status must not be empty.",
		})
	}
	return s.userRepo.UpdateStatus(ctx, userID, strings.TrimSpace(status))
}
