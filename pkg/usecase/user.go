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
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
)

// UserUseCase implements user lifecycle and karma operations
type UserUseCase struct {
	repo   interfaces.Repository
	github github.Service
	slack  slack.Service
}

func NewUserUseCase(repo interfaces.Repository, githubSvc github.Service, slackSvc slack.Service) *UserUseCase {
	return &UserUseCase{
		repo:   repo,
		github: githubSvc,
		slack:  slackSvc,
	}
}

// CreateFromSlack registers a workspace member, typically on a team_join
// event. An already registered user is returned unchanged so replayed
// events cannot reset a profile.
func (uc *UserUseCase) CreateFromSlack(ctx context.Context, slackUser *slack.User) (*model.User, error) {
	user, created, err := registerSlackUser(ctx, uc.repo, slackUser)
	if err != nil {
		return nil, err
	}
	if created {
		logging.From(ctx).Info("registered new user", "slack_id", user.SlackID)
	}
	return user, nil
}

// EnsureUser resolves a user, registering them from their Slack profile on
// first contact. Without a Slack service a missing user stays missing.
func (uc *UserUseCase) EnsureUser(ctx context.Context, id types.SlackUserID) (*model.User, error) {
	user, err := getUser(ctx, uc.repo, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) || uc.slack == nil {
		return nil, err
	}

	info, err := uc.slack.GetUserInfo(ctx, string(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch slack profile", goerr.V(SlackIDKey, id))
	}
	return uc.CreateFromSlack(ctx, info)
}

// ViewUser retrieves a user's profile. Viewing needs no permission.
func (uc *UserUseCase) ViewUser(ctx context.Context, id types.SlackUserID) (*model.User, error) {
	return getUser(ctx, uc.repo, id)
}

// ListUsers retrieves all users, or only those at the given permission
// level when one is provided
func (uc *UserUseCase) ListUsers(ctx context.Context, level *types.PermissionLevel) ([]*model.User, error) {
	if level != nil {
		users, err := uc.repo.User().ListByPermission(ctx, *level)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list users by permission", goerr.V("level", level.String()))
		}
		return users, nil
	}

	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// EditUserRequest carries the editable profile fields. Nil fields are left
// unchanged.
type EditUserRequest struct {
	Name           *string
	Email          *string
	GithubUsername *string
	Major          *string
	Position       *string
	Biography      *string
}

// EditUser updates a profile. Users edit themselves; editing someone else
// requires admin. Changing the GitHub username re-resolves and links the
// numeric GitHub ID, so a bad username fails the edit.
func (uc *UserUseCase) EditUser(ctx context.Context, callerID, targetID types.SlackUserID, req *EditUserRequest) (*model.User, error) {
	if callerID != targetID {
		caller, err := getUser(ctx, uc.repo, callerID)
		if err != nil {
			return nil, err
		}
		if caller.PermissionsLevel != types.PermissionAdmin {
			return nil, goerr.Wrap(ErrPermissionDenied, "editing another user requires admin",
				goerr.V(SlackIDKey, callerID))
		}
	}

	target, err := getUser(ctx, uc.repo, targetID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		target.Name = *req.Name
	}
	if req.Email != nil {
		target.Email = *req.Email
	}
	if req.Major != nil {
		target.Major = *req.Major
	}
	if req.Position != nil {
		target.Position = *req.Position
	}
	if req.Biography != nil {
		target.Biography = *req.Biography
	}

	if req.GithubUsername != nil && *req.GithubUsername != string(target.GithubUsername) {
		target.GithubUsername = types.GithubUsername(*req.GithubUsername)
		target.GithubID = ""
		if target.GithubUsername != "" {
			id, err := uc.github.LookupUser(ctx, target.GithubUsername)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to look up GitHub user",
					goerr.V(SlackIDKey, targetID),
					goerr.V("github_username", target.GithubUsername))
			}
			target.GithubID = id
		}
	}

	if err := uc.repo.User().Put(ctx, target); err != nil {
		return nil, goerr.Wrap(err, "failed to store user", goerr.V(SlackIDKey, targetID))
	}

	return target, nil
}

// DeleteUser removes a user record. Admin only.
func (uc *UserUseCase) DeleteUser(ctx context.Context, callerID, targetID types.SlackUserID) error {
	caller, err := getUser(ctx, uc.repo, callerID)
	if err != nil {
		return err
	}
	if caller.PermissionsLevel != types.PermissionAdmin {
		return goerr.Wrap(ErrPermissionDenied, "deleting a user requires admin", goerr.V(SlackIDKey, callerID))
	}

	if err := uc.repo.User().Delete(ctx, targetID); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V(SlackIDKey, targetID))
	}
	return nil
}

// HandleOrgMemberRemoved cleans up after a user left or was removed from
// the GitHub organization: they are dropped from every local team and their
// user record is deleted. Unknown GitHub IDs are ignored.
func (uc *UserUseCase) HandleOrgMemberRemoved(ctx context.Context, githubID types.GithubUserID) error {
	user, err := uc.repo.User().GetByGithubID(ctx, githubID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to look up user by GitHub ID", goerr.V("github_id", githubID))
	}

	teams, err := uc.repo.Team().ListByMember(ctx, githubID)
	if err != nil {
		return goerr.Wrap(err, "failed to list teams of user", goerr.V("github_id", githubID))
	}
	for _, team := range teams {
		team.RemoveMember(githubID)
		if err := uc.repo.Team().Put(ctx, team); err != nil {
			return goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, team.GithubTeamID))
		}
	}

	if err := uc.repo.User().Delete(ctx, user.SlackID); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V(SlackIDKey, user.SlackID))
	}

	logging.From(ctx).Info("removed user after org departure",
		"slack_id", user.SlackID,
		"github_id", githubID,
		"teams", len(teams),
	)
	return nil
}

// AddKarma gives one karma point from the giver to the target and returns
// the target's new total. Self-karma is rejected.
func (uc *UserUseCase) AddKarma(ctx context.Context, giverID, targetID types.SlackUserID) (int, error) {
	if giverID == targetID {
		return 0, goerr.Wrap(ErrSelfKarma, "self karma is not allowed", goerr.V(SlackIDKey, giverID))
	}

	if _, err := getUser(ctx, uc.repo, giverID); err != nil {
		return 0, err
	}

	target, err := getUser(ctx, uc.repo, targetID)
	if err != nil {
		return 0, err
	}

	target.Karma++
	if err := uc.repo.User().Put(ctx, target); err != nil {
		return 0, goerr.Wrap(err, "failed to store user", goerr.V(SlackIDKey, targetID))
	}

	return target.Karma, nil
}

// ViewKarma returns the user's karma total
func (uc *UserUseCase) ViewKarma(ctx context.Context, id types.SlackUserID) (int, error) {
	user, err := getUser(ctx, uc.repo, id)
	if err != nil {
		return 0, err
	}
	return user.Karma, nil
}
