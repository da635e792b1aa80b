package interfaces

import (
	"context"

	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

// UserRepository persists User entities keyed by Slack user ID
type UserRepository interface {
	// Put upserts the user after validating required fields
	Put(ctx context.Context, user *model.User) error

	// Get retrieves a user by Slack ID. Returns a not-found error on miss.
	Get(ctx context.Context, id types.SlackUserID) (*model.User, error)

	// GetByGithubID retrieves the user with the given linked GitHub ID.
	// Returns a not-found error when no user has linked that account.
	GetByGithubID(ctx context.Context, id types.GithubUserID) (*model.User, error)

	// GetByIDs retrieves multiple users by Slack ID, silently omitting
	// missing keys (best-effort bulk retrieve)
	GetByIDs(ctx context.Context, ids []types.SlackUserID) ([]*model.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*model.User, error)

	// ListByPermission retrieves all users at the given permission level
	ListByPermission(ctx context.Context, level types.PermissionLevel) ([]*model.User, error)

	// Delete removes the user. Deleting a missing user is not an error.
	Delete(ctx context.Context, id types.SlackUserID) error
}
