package github

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

// ErrDirectory marks failures raised by the remote team directory (the
// GitHub organization API). The original API error payload is attached as a
// goerr value so callers can surface it. Callers distinguish directory
// failures from engine-side validation/permission failures with errors.Is.
var ErrDirectory = goerr.New("github directory request failed")

// Service is the remote team directory: the GitHub organization's teams and
// memberships
type Service interface {
	// CreateTeam creates a team and returns the ID assigned by GitHub
	CreateTeam(ctx context.Context, name string) (types.TeamID, error)

	// DeleteTeam deletes the team
	DeleteTeam(ctx context.Context, id types.TeamID) error

	// EditTeam updates the team's name and, if non-empty, description
	EditTeam(ctx context.Context, id types.TeamID, name, description string) error

	// AddMember adds the user to the team, inviting them to the
	// organization if needed
	AddMember(ctx context.Context, username types.GithubUsername, id types.TeamID) error

	// RemoveMember removes the user from the team
	RemoveMember(ctx context.Context, username types.GithubUsername, id types.TeamID) error

	// HasMember reports whether the user is a member of the team
	HasMember(ctx context.Context, username types.GithubUsername, id types.TeamID) (bool, error)

	// ListTeams retrieves all organization teams with their member sets
	ListTeams(ctx context.Context) ([]*Team, error)

	// LookupUser resolves a GitHub login to its numeric user ID
	LookupUser(ctx context.Context, username types.GithubUsername) (types.GithubUserID, error)
}

// Team is a remote team record returned by ListTeams
type Team struct {
	ID      types.TeamID
	Name    string // team slug
	Members []TeamMember
}

// TeamMember is a remote team member
type TeamMember struct {
	ID    types.GithubUserID
	Login types.GithubUsername
}

// MemberIDs returns the member set as GitHub user IDs
func (t *Team) MemberIDs() []types.GithubUserID {
	ids := make([]types.GithubUserID, len(t.Members))
	for i, m := range t.Members {
		ids[i] = m.ID
	}
	return ids
}
