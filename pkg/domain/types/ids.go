package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// SlackUserID represents a Slack workspace user ID (e.g. "U12345678").
// It is the primary key of a User and is immutable after creation.
type SlackUserID string

// Validate checks if the SlackUserID is valid
func (x SlackUserID) Validate() error {
	if x == "" {
		return goerr.New("slack user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of SlackUserID
func (x SlackUserID) String() string {
	return string(x)
}

// TeamID represents the GitHub team ID assigned by the remote directory on
// team creation. It is the primary key of a Team.
type TeamID string

// Validate checks if the TeamID is valid
func (x TeamID) Validate() error {
	if x == "" {
		return goerr.New("team ID cannot be empty")
	}
	return nil
}

// String returns the string representation of TeamID
func (x TeamID) String() string {
	return string(x)
}

// GithubUsername represents a GitHub login name (e.g. "octocat")
type GithubUsername string

// String returns the string representation of GithubUsername
func (x GithubUsername) String() string {
	return string(x)
}

// GithubUserID represents the numeric GitHub user ID as a string. It is
// empty until the user links a GitHub account, and it is the join key used
// for team membership sets.
type GithubUserID string

// String returns the string representation of GithubUserID
func (x GithubUserID) String() string {
	return string(x)
}
