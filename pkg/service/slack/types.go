package slack

import (
	"context"
)

// Service provides the Slack workspace collaborator operations the bot
// needs: user lookups, channel rosters, and message posting
type Service interface {
	// GetUserInfo retrieves user information for the given user ID
	GetUserInfo(ctx context.Context, userID string) (*User, error)

	// ListUsers retrieves all non-deleted, non-bot users in the workspace
	ListUsers(ctx context.Context) ([]*User, error)

	// GetChannelMembers retrieves the Slack user IDs of all members of the
	// given channel, excluding bots
	GetChannelMembers(ctx context.Context, channelID string) ([]string, error)

	// PostMessage posts a plain-text message to a channel or user
	PostMessage(ctx context.Context, channelID, text string) error
}

// User represents a Slack user
type User struct {
	ID       string
	Name     string
	RealName string
	Email    string
	ImageURL string
	IsBot    bool
}
