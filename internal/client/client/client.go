package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/barbot/internal/client/models"
)

// Client is the transport-agnostic contract for the assistant backend.
type Client interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, username, password string) (string, error)
	// Register creates an account. It does not log the user in.
	Register(ctx context.Context, reg models.Registration) (*models.UserProfile, error)
	// CurrentUser returns the profile that token belongs to.
	CurrentUser(ctx context.Context, token string) (*models.UserProfile, error)
	// Chat sends the whole conversation and returns the raw response payload.
	Chat(ctx context.Context, messages []models.Message) (json.RawMessage, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
