package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

// DefaultKarma is the karma value assigned to newly created users
const DefaultKarma = 1

// User represents a club member: a Slack workspace user optionally linked
// to a GitHub account. SlackID is the primary key and is immutable.
type User struct {
	SlackID          types.SlackUserID
	Name             string
	Email            string
	GithubUsername   types.GithubUsername
	GithubID         types.GithubUserID // empty until a GitHub account is linked
	Major            string
	Position         string
	Biography        string
	ImageURL         string
	PermissionsLevel types.PermissionLevel
	Karma            int
}

// NewUser creates a User with default permission level and karma
func NewUser(slackID types.SlackUserID) *User {
	return &User{
		SlackID:          slackID,
		PermissionsLevel: types.PermissionMember,
		Karma:            DefaultKarma,
	}
}

// Validate checks the fields required for persistence
func (u *User) Validate() error {
	if err := u.SlackID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}
	if !u.PermissionsLevel.IsValid() {
		return goerr.New("invalid permission level",
			goerr.V("slack_id", u.SlackID),
			goerr.V("level", int(u.PermissionsLevel)))
	}
	return nil
}

// IsLinked reports whether the user has a linked GitHub identity
func (u *User) IsLinked() bool {
	return u.GithubID != ""
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	copied := *u
	return &copied
}
