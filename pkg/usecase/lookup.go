package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/slack"
)

// getUser retrieves a user by Slack ID, mapping a repository miss to
// ErrUserNotFound
func getUser(ctx context.Context, repo interfaces.Repository, id types.SlackUserID) (*model.User, error) {
	user, err := repo.User().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrUserNotFound, "no such user", goerr.V(SlackIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(SlackIDKey, id))
	}
	return user, nil
}

// findTeamByName resolves a team name to exactly one team. Zero matches is
// ErrTeamNotFound, more than one is ErrTeamNameAmbiguous.
func findTeamByName(ctx context.Context, repo interfaces.Repository, name string) (*model.Team, error) {
	teams, err := repo.Team().FindByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find team", goerr.V(TeamNameKey, name))
	}

	switch len(teams) {
	case 0:
		return nil, goerr.Wrap(ErrTeamNotFound, "no such team", goerr.V(TeamNameKey, name))
	case 1:
		return teams[0], nil
	default:
		return nil, goerr.Wrap(ErrTeamNameAmbiguous, "team name is ambiguous",
			goerr.V(TeamNameKey, name),
			goerr.V("matches", len(teams)))
	}
}

// linkGithubID resolves and persists the numeric GitHub ID for a user whose
// GithubUsername is set but whose GithubID is not yet linked
func linkGithubID(ctx context.Context, repo interfaces.Repository, githubSvc github.Service, user *model.User) error {
	if user.IsLinked() {
		return nil
	}
	if user.GithubUsername == "" {
		return goerr.Wrap(ErrGithubNotLinked, "user has no GitHub username", goerr.V(SlackIDKey, user.SlackID))
	}

	id, err := githubSvc.LookupUser(ctx, user.GithubUsername)
	if err != nil {
		return goerr.Wrap(err, "failed to look up GitHub user",
			goerr.V(SlackIDKey, user.SlackID),
			goerr.V("github_username", user.GithubUsername))
	}

	user.GithubID = id
	if err := repo.User().Put(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to persist GitHub link", goerr.V(SlackIDKey, user.SlackID))
	}
	return nil
}

// registerSlackUser stores a workspace member, leaving an existing record
// untouched so replayed events and sync passes cannot reset a profile. The
// second return reports whether a new record was created.
func registerSlackUser(ctx context.Context, repo interfaces.Repository, slackUser *slack.User) (*model.User, bool, error) {
	slackID := types.SlackUserID(slackUser.ID)

	existing, err := repo.User().Get(ctx, slackID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, false, goerr.Wrap(err, "failed to check for existing user", goerr.V(SlackIDKey, slackID))
	}

	user := model.NewUser(slackID)
	user.Name = slackUser.RealName
	if user.Name == "" {
		user.Name = slackUser.Name
	}
	user.Email = slackUser.Email
	user.ImageURL = slackUser.ImageURL

	if err := repo.User().Put(ctx, user); err != nil {
		return nil, false, goerr.Wrap(err, "failed to store user", goerr.V(SlackIDKey, slackID))
	}
	return user, true, nil
}

// memberEmails resolves the team's GitHub member IDs to user email
// addresses, skipping members without a local user record or email
func memberEmails(ctx context.Context, repo interfaces.Repository, team *model.Team) []string {
	emails := make([]string, 0, len(team.Members))
	for _, id := range team.Members {
		user, err := repo.User().GetByGithubID(ctx, id)
		if err != nil || user.Email == "" {
			continue
		}
		emails = append(emails, user.Email)
	}
	return emails
}
