package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

// Team represents a local record of a GitHub team. GithubTeamID is assigned
// by the remote directory on creation and is the primary key;
// GithubTeamName is a unique-by-convention slug used for human lookup.
//
// Members and TeamLeads hold GitHub user IDs, not Slack IDs. TeamLeads is
// always a subset of Members: all mutation goes through AddMember /
// RemoveMember / SetLead / UnsetLead / ReplaceMembers, which maintain the
// invariant.
type Team struct {
	GithubTeamID   types.TeamID
	GithubTeamName string
	DisplayName    string
	Platform       string
	Folder         string // optional Drive folder ID for the team's resources
	Members        []types.GithubUserID
	TeamLeads      []types.GithubUserID
}

// NewTeam creates a Team with the given remote ID and name
func NewTeam(id types.TeamID, name string) *Team {
	return &Team{
		GithubTeamID:   id,
		GithubTeamName: name,
	}
}

// Validate checks the fields required for persistence
func (t *Team) Validate() error {
	if err := t.GithubTeamID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid team")
	}
	if t.GithubTeamName == "" {
		return goerr.New("team name cannot be empty", goerr.V("team_id", t.GithubTeamID))
	}
	for _, lead := range t.TeamLeads {
		if !t.HasMember(lead) {
			return goerr.New("team lead is not a member",
				goerr.V("team_id", t.GithubTeamID),
				goerr.V("github_id", lead))
		}
	}
	return nil
}

// HasMember reports whether the GitHub user is a team member
func (t *Team) HasMember(id types.GithubUserID) bool {
	return slices.Contains(t.Members, id)
}

// HasLead reports whether the GitHub user is a team lead
func (t *Team) HasLead(id types.GithubUserID) bool {
	return slices.Contains(t.TeamLeads, id)
}

// AddMember adds the GitHub user to the member set. Idempotent.
func (t *Team) AddMember(id types.GithubUserID) {
	if id == "" || t.HasMember(id) {
		return
	}
	t.Members = append(t.Members, id)
}

// RemoveMember removes the GitHub user from the member set and, to keep
// TeamLeads a subset of Members, from the lead set as well. Idempotent.
func (t *Team) RemoveMember(id types.GithubUserID) {
	t.Members = slices.DeleteFunc(t.Members, func(m types.GithubUserID) bool {
		return m == id
	})
	t.UnsetLead(id)
}

// SetLead marks the GitHub user as a team lead, adding them as a member
// first if needed. Idempotent.
func (t *Team) SetLead(id types.GithubUserID) {
	if id == "" {
		return
	}
	t.AddMember(id)
	if !t.HasLead(id) {
		t.TeamLeads = append(t.TeamLeads, id)
	}
}

// UnsetLead clears the lead flag for the GitHub user. Removing lead status
// from a non-lead is a no-op. Membership is unaffected.
func (t *Team) UnsetLead(id types.GithubUserID) {
	t.TeamLeads = slices.DeleteFunc(t.TeamLeads, func(m types.GithubUserID) bool {
		return m == id
	})
}

// ReplaceMembers overwrites the member set with the given GitHub user IDs
// and prunes leads that are no longer members. Used by the refresh loop
// when the remote member set is authoritative.
func (t *Team) ReplaceMembers(ids []types.GithubUserID) {
	t.Members = slices.Clone(ids)
	t.TeamLeads = slices.DeleteFunc(t.TeamLeads, func(m types.GithubUserID) bool {
		return !t.HasMember(m)
	})
}

// SameMembers reports whether the team's member set equals the given set,
// ignoring order
func (t *Team) SameMembers(ids []types.GithubUserID) bool {
	if len(t.Members) != len(ids) {
		return false
	}
	for _, id := range ids {
		if !t.HasMember(id) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the team
func (t *Team) Clone() *Team {
	copied := *t
	copied.Members = slices.Clone(t.Members)
	copied.TeamLeads = slices.Clone(t.TeamLeads)
	return &copied
}
