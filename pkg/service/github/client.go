package github

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

type client struct {
	rest *github.Client
	gql  *githubv4.Client
	org  string

	orgIDOnce sync.Once
	orgID     int64
	orgIDErr  error
}

// New creates a new GitHub directory Service for the given organization
// using GitHub App authentication. privateKey can be a PEM string or a file
// path to a PEM file.
func New(appID, installationID int64, privateKey, org string) (Service, error) {
	if org == "" {
		return nil, goerr.New("github organization is required")
	}

	var key []byte
	// Try reading as file path first
	// #nosec G304 -- path comes from CLI flag, not user input
	if data, err := os.ReadFile(privateKey); err == nil {
		key = data
	} else {
		key = []byte(privateKey)
	}

	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	httpClient := &http.Client{Transport: tr}
	return &client{
		rest: github.NewClient(httpClient),
		gql:  githubv4.NewClient(httpClient),
		org:  org,
	}, nil
}

// wrapDirectory marks an API failure as a directory error, keeping the API
// payload available for display
func wrapDirectory(err error, msg string, options ...goerr.Option) error {
	options = append(options, goerr.V("github_error", err.Error()))
	return goerr.Wrap(ErrDirectory, msg, options...)
}

func parseTeamID(id types.TeamID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid github team ID", goerr.V("team_id", id))
	}
	return n, nil
}

// organizationID resolves and caches the numeric ID of the organization,
// needed by the by-ID team endpoints
func (c *client) organizationID(ctx context.Context) (int64, error) {
	c.orgIDOnce.Do(func() {
		org, _, err := c.rest.Organizations.Get(ctx, c.org)
		if err != nil {
			c.orgIDErr = wrapDirectory(err, "failed to resolve organization", goerr.V("org", c.org))
			return
		}
		c.orgID = org.GetID()
	})
	return c.orgID, c.orgIDErr
}

func (c *client) CreateTeam(ctx context.Context, name string) (types.TeamID, error) {
	team, _, err := c.rest.Teams.CreateTeam(ctx, c.org, github.NewTeam{
		Name:    name,
		Privacy: github.Ptr("closed"),
	})
	if err != nil {
		return "", wrapDirectory(err, "failed to create team", goerr.V("name", name))
	}
	return types.TeamID(strconv.FormatInt(team.GetID(), 10)), nil
}

func (c *client) DeleteTeam(ctx context.Context, id types.TeamID) error {
	orgID, err := c.organizationID(ctx)
	if err != nil {
		return err
	}
	teamID, err := parseTeamID(id)
	if err != nil {
		return err
	}

	if _, err := c.rest.Teams.DeleteTeamByID(ctx, orgID, teamID); err != nil {
		return wrapDirectory(err, "failed to delete team", goerr.V("team_id", id))
	}
	return nil
}

func (c *client) EditTeam(ctx context.Context, id types.TeamID, name, description string) error {
	orgID, err := c.organizationID(ctx)
	if err != nil {
		return err
	}
	teamID, err := parseTeamID(id)
	if err != nil {
		return err
	}

	team := github.NewTeam{Name: name}
	if description != "" {
		team.Description = github.Ptr(description)
	}
	if _, _, err := c.rest.Teams.EditTeamByID(ctx, orgID, teamID, team, false); err != nil {
		return wrapDirectory(err, "failed to edit team",
			goerr.V("team_id", id), goerr.V("name", name))
	}
	return nil
}

func (c *client) AddMember(ctx context.Context, username types.GithubUsername, id types.TeamID) error {
	orgID, err := c.organizationID(ctx)
	if err != nil {
		return err
	}
	teamID, err := parseTeamID(id)
	if err != nil {
		return err
	}

	if _, _, err := c.rest.Teams.AddTeamMembershipByID(ctx, orgID, teamID, string(username), nil); err != nil {
		return wrapDirectory(err, "failed to add team member",
			goerr.V("team_id", id), goerr.V("username", username))
	}
	return nil
}

func (c *client) RemoveMember(ctx context.Context, username types.GithubUsername, id types.TeamID) error {
	orgID, err := c.organizationID(ctx)
	if err != nil {
		return err
	}
	teamID, err := parseTeamID(id)
	if err != nil {
		return err
	}

	if _, err := c.rest.Teams.RemoveTeamMembershipByID(ctx, orgID, teamID, string(username)); err != nil {
		return wrapDirectory(err, "failed to remove team member",
			goerr.V("team_id", id), goerr.V("username", username))
	}
	return nil
}

func (c *client) HasMember(ctx context.Context, username types.GithubUsername, id types.TeamID) (bool, error) {
	orgID, err := c.organizationID(ctx)
	if err != nil {
		return false, err
	}
	teamID, err := parseTeamID(id)
	if err != nil {
		return false, err
	}

	_, resp, err := c.rest.Teams.GetTeamMembershipByID(ctx, orgID, teamID, string(username))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, wrapDirectory(err, "failed to check team membership",
			goerr.V("team_id", id), goerr.V("username", username))
	}
	return true, nil
}

func (c *client) LookupUser(ctx context.Context, username types.GithubUsername) (types.GithubUserID, error) {
	user, _, err := c.rest.Users.Get(ctx, string(username))
	if err != nil {
		return "", wrapDirectory(err, "failed to look up user", goerr.V("username", username))
	}
	return types.GithubUserID(strconv.FormatInt(user.GetID(), 10)), nil
}

// ListTeams fetches all organization teams with member sets in paginated
// GraphQL queries. One query returns up to 50 teams with up to 100 members
// each, which avoids the per-team REST member listing during refresh.
func (c *client) ListTeams(ctx context.Context) ([]*Team, error) {
	var teams []*Team
	var cursor *githubv4.String

	for {
		var q orgTeamsQuery
		variables := map[string]interface{}{
			"login":  githubv4.String(c.org),
			"cursor": cursor,
		}

		if err := c.gql.Query(ctx, &q, variables); err != nil {
			return nil, wrapDirectory(err, "failed to list teams", goerr.V("org", c.org))
		}

		for _, node := range q.Organization.Teams.Nodes {
			team := &Team{
				ID:   types.TeamID(strconv.FormatInt(int64(node.DatabaseID), 10)),
				Name: string(node.Slug),
			}
			for _, member := range node.Members.Nodes {
				team.Members = append(team.Members, TeamMember{
					ID:    types.GithubUserID(strconv.FormatInt(int64(member.DatabaseID), 10)),
					Login: types.GithubUsername(member.Login),
				})
			}
			teams = append(teams, team)
		}

		if !q.Organization.Teams.PageInfo.HasNextPage {
			return teams, nil
		}
		cursor = &q.Organization.Teams.PageInfo.EndCursor
	}
}

// GraphQL query types

type pageInfo struct {
	HasNextPage githubv4.Boolean
	EndCursor   githubv4.String
}

type orgTeamsQuery struct {
	Organization struct {
		Teams struct {
			Nodes []struct {
				DatabaseID githubv4.Int
				Slug       githubv4.String
				Members    struct {
					Nodes []struct {
						DatabaseID githubv4.Int
						Login      githubv4.String
					}
				} `graphql:"members(first: 100)"`
			}
			PageInfo pageInfo
		} `graphql:"teams(first: 50, after: $cursor)"`
	} `graphql:"organization(login: $login)"`
}
