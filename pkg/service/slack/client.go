package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// client implements Service interface
type client struct {
	api *slack.Client
}

// New creates a new Slack service with the provided bot token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	return &client{api: slack.New(token)}, nil
}

// GetUserInfo retrieves user information for the given user ID
func (c *client) GetUserInfo(ctx context.Context, userID string) (*User, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	return &User{
		ID:       user.ID,
		Name:     user.Name,
		RealName: user.RealName,
		Email:    user.Profile.Email,
		ImageURL: user.Profile.Image48,
		IsBot:    user.IsBot,
	}, nil
}

// ListUsers retrieves all non-deleted, non-bot users in the workspace
func (c *client) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}

	result := make([]*User, 0, len(users))
	for _, u := range users {
		if u.Deleted || u.IsBot {
			continue
		}

		result = append(result, &User{
			ID:       u.ID,
			Name:     u.Name,
			RealName: u.RealName,
			Email:    u.Profile.Email,
			ImageURL: u.Profile.Image48,
		})
	}

	return result, nil
}

// GetChannelMembers retrieves the Slack user IDs of all channel members,
// excluding bots
func (c *client) GetChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	var members []string
	var cursor string

	for {
		ids, nextCursor, err := c.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
			ChannelID: channelID,
			Cursor:    cursor,
			Limit:     200,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get channel members", goerr.V("channel_id", channelID))
		}

		members = append(members, ids...)

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	// Filter out bot accounts so a channel-seeded team only gets humans
	result := make([]string, 0, len(members))
	for _, id := range members {
		info, err := c.api.GetUserInfoContext(ctx, id)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get member info", goerr.V("user_id", id))
		}
		if info.IsBot || info.Deleted {
			continue
		}
		result = append(result, id)
	}

	return result, nil
}

// PostMessage posts a plain-text message to a channel or user
func (c *client) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return nil
}
