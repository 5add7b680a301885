package content

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/contentapi"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

// UserAdapter implements account operations over the content API
type UserAdapter struct {
	client contentapi.Client
}

// NewUserAdapter creates a user repository over the content API
func NewUserAdapter(client contentapi.Client) *UserAdapter {
	return &UserAdapter{client: client}
}

var _ repositories.UserRepository = (*UserAdapter)(nil)

// Login exchanges credentials for a session
func (a *UserAdapter) Login(ctx context.Context, identifier, password string) (*entities.Session, error) {
	resp, err := a.client.Login(ctx, identifier, password)
	if err != nil {
		// The API answers bad credentials with 400.
		if contentapi.StatusCode(err) == http.StatusBadRequest {
			return nil, &apperrors.AppError{Type: apperrors.ErrorTypeUnauthorized, Message: "invalid identifier or password", Err: err}
		}
		return nil, mapError(err, "login failed")
	}
	return toSession(resp)
}

// Register creates an account and returns its session
func (a *UserAdapter) Register(ctx context.Context, username, email, password string) (*entities.Session, error) {
	resp, err := a.client.Register(ctx, username, email, password)
	if err != nil {
		return nil, mapError(err, "registration failed")
	}
	return toSession(resp)
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	u, err := a.client.GetUser(ctx, id)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to load user %s", id))
	}
	user := toUser(u)
	return &user, nil
}

func toSession(resp *contentapi.AuthResponse) (*entities.Session, error) {
	if resp.JWT == "" || resp.User.ID == "" {
		return nil, mapError(contentapi.ErrMalformedResponse, "auth response is missing jwt or user")
	}
	return &entities.Session{Token: resp.JWT, User: toUser(&resp.User)}, nil
}

func toUser(u *contentapi.User) entities.User {
	return entities.User{
		ID:        string(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		Confirmed: u.Confirmed,
		Blocked:   u.Blocked,
		CreatedAt: u.CreatedAt,
	}
}
