package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zatekoja/woundtrack/internal/application/session"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// registration mirrors the content API's own account rules.
type registration struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// AuthService signs users in and out of the content API
type AuthService struct {
	users   repositories.UserRepository
	session *session.Manager
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, manager *session.Manager) *AuthService {
	return &AuthService{users: users, session: manager}
}

// Login exchanges credentials for a session and stores it
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*entities.Session, error) {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return nil, apperrors.NewValidationError("identifier and password are required")
	}

	sess, err := s.users.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	if err := s.session.Set(ctx, sess); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", sess.User.ID).Msg("Signed in")
	current, _ := s.session.Current()
	return current, nil
}

// Register creates an account, signs it in and stores the session
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*entities.Session, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if err := validateRegistration(registration{Username: username, Email: email, Password: password}); err != nil {
		return nil, err
	}

	sess, err := s.users.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.session.Set(ctx, sess); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", sess.User.ID).Msg("Registered")
	current, _ := s.session.Current()
	return current, nil
}

// Logout clears the stored session
func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Teardown(ctx)
}

// Current returns the active session or UNAUTHORIZED
func (s *AuthService) Current(ctx context.Context) (*entities.Session, error) {
	return s.session.Require()
}

// Profile fetches the signed-in user's account from the content API
func (s *AuthService) Profile(ctx context.Context) (*entities.User, error) {
	sess, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, sess.User.ID)
	if apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
		logger := observability.LoggerFromContext(ctx)
		logger.Info().Str("user_id", sess.User.ID).Msg("Session rejected by content API")
		if tdErr := s.session.Teardown(ctx); tdErr != nil {
			logger.Error().Err(tdErr).Str("user_id", sess.User.ID).Msg("Failed to clear rejected session")
		}
	}
	return user, err
}

func validateRegistration(r registration) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("registration is invalid")
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperrors.NewValidationError(field + " is required")
	case "min":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	default:
		return apperrors.NewValidationError(field + " is invalid")
	}
}
