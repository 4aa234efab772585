// Package api talks to the Kadrio backend's auth endpoints. It owns the
// wire contract: request shapes, the loose response envelopes, and the
// mapping of transport failures onto the client's error taxonomy.
package api

import (
	"context"

	"github.com/kadrio/clientkit/internal/client/models"
	"github.com/kadrio/clientkit/internal/client/permission"
)

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a new actor (and, for the first actor, a tenant).
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name,omitempty"`
}

// LoginResult is the successful outcome of login or register.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// TokenPair is the outcome of a token refresh. RefreshToken is empty when
// the server did not rotate it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Client is the remote auth API. Implementations map HTTP status codes and
// network failures onto the sentinel errors in internal/common, so callers
// can distinguish "credentials invalid" from "server unreachable" with
// errors.Is and never inspect transports themselves.
type Client interface {
	// Login exchanges credentials for the actor and a token pair.
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)

	// Register creates a new actor and logs it in.
	Register(ctx context.Context, req RegisterRequest) (*LoginResult, error)

	// Me returns the actor owning the token.
	Me(ctx context.Context, token string) (*models.User, error)

	// UserType fetches the permission grant of a user type.
	UserType(ctx context.Context, token string, id int64) ([]permission.RawModule, error)

	// Refresh exchanges the refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Logout invalidates the server-side session.
	Logout(ctx context.Context, token string) error
}
