package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
)

// MemberUseCase implements team membership operations
type MemberUseCase struct {
	repo   interfaces.Repository
	github github.Service
	policy *Policy
}

func NewMemberUseCase(repo interfaces.Repository, githubSvc github.Service, policy *Policy) *MemberUseCase {
	return &MemberUseCase{
		repo:   repo,
		github: githubSvc,
		policy: policy,
	}
}

// AddMember adds the target user to the named team, remotely first. The
// target must have a GitHub username on record; their numeric GitHub ID is
// linked on first use. Joining a special team promotes the target.
func (uc *MemberUseCase) AddMember(ctx context.Context, callerID types.SlackUserID, teamName string, targetID types.SlackUserID) error {
	team, err := uc.authorize(ctx, callerID, teamName)
	if err != nil {
		return err
	}

	target, err := getUser(ctx, uc.repo, targetID)
	if err != nil {
		return err
	}
	if err := linkGithubID(ctx, uc.repo, uc.github, target); err != nil {
		return err
	}

	if err := uc.github.AddMember(ctx, target.GithubUsername, team.GithubTeamID); err != nil {
		return goerr.Wrap(err, "failed to add member to remote team",
			goerr.V(SlackIDKey, targetID),
			goerr.V(TeamIDKey, team.GithubTeamID))
	}

	team.AddMember(target.GithubID)
	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, team.GithubTeamID))
	}

	return uc.policy.PromoteOnJoin(ctx, target, team.GithubTeamName)
}

// RemoveMember removes the target user from the named team. Remote
// membership is verified first; a user not on the remote team yields
// ErrNotInTeam. The local record is cleared before the remote removal, and
// leaving a special team demotes the target.
func (uc *MemberUseCase) RemoveMember(ctx context.Context, callerID types.SlackUserID, teamName string, targetID types.SlackUserID) error {
	team, err := uc.authorize(ctx, callerID, teamName)
	if err != nil {
		return err
	}

	target, err := getUser(ctx, uc.repo, targetID)
	if err != nil {
		return err
	}
	if target.GithubUsername == "" {
		return goerr.Wrap(ErrGithubNotLinked, "user has no GitHub username", goerr.V(SlackIDKey, targetID))
	}

	isMember, err := uc.github.HasMember(ctx, target.GithubUsername, team.GithubTeamID)
	if err != nil {
		return goerr.Wrap(err, "failed to check remote membership",
			goerr.V(SlackIDKey, targetID),
			goerr.V(TeamIDKey, team.GithubTeamID))
	}
	if !isMember {
		return goerr.Wrap(ErrNotInTeam, "user is not on the team",
			goerr.V(SlackIDKey, targetID),
			goerr.V(TeamNameKey, teamName))
	}

	team.RemoveMember(target.GithubID)
	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, team.GithubTeamID))
	}

	if err := uc.github.RemoveMember(ctx, target.GithubUsername, team.GithubTeamID); err != nil {
		return goerr.Wrap(err, "failed to remove member from remote team",
			goerr.V(SlackIDKey, targetID),
			goerr.V(TeamIDKey, team.GithubTeamID))
	}

	return uc.policy.DemoteOnLeave(ctx, target, team.GithubTeamName)
}

// SetLead grants or revokes the target's team lead status. Granting lead to
// a non-member adds them to the team first. Revoking lead from a member who
// is not a lead succeeds as a no-op; revoking from a non-member yields
// ErrNotInTeam. Revoking lead status does not remove team membership.
func (uc *MemberUseCase) SetLead(ctx context.Context, callerID types.SlackUserID, teamName string, targetID types.SlackUserID, remove bool) error {
	team, err := uc.authorize(ctx, callerID, teamName)
	if err != nil {
		return err
	}

	target, err := getUser(ctx, uc.repo, targetID)
	if err != nil {
		return err
	}

	if remove {
		return uc.unsetLead(ctx, team, target)
	}
	return uc.setLead(ctx, team, target)
}

func (uc *MemberUseCase) setLead(ctx context.Context, team *model.Team, target *model.User) error {
	if err := linkGithubID(ctx, uc.repo, uc.github, target); err != nil {
		return err
	}

	if !team.HasMember(target.GithubID) {
		if err := uc.github.AddMember(ctx, target.GithubUsername, team.GithubTeamID); err != nil {
			return goerr.Wrap(err, "failed to add lead to remote team",
				goerr.V(SlackIDKey, target.SlackID),
				goerr.V(TeamIDKey, team.GithubTeamID))
		}
	}

	team.SetLead(target.GithubID)
	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, team.GithubTeamID))
	}

	return uc.policy.PromoteOnJoin(ctx, target, team.GithubTeamName)
}

func (uc *MemberUseCase) unsetLead(ctx context.Context, team *model.Team, target *model.User) error {
	if !target.IsLinked() || !team.HasMember(target.GithubID) {
		return goerr.Wrap(ErrNotInTeam, "user is not on the team",
			goerr.V(SlackIDKey, target.SlackID),
			goerr.V(TeamNameKey, team.GithubTeamName))
	}
	if !team.HasLead(target.GithubID) {
		return nil
	}

	team.UnsetLead(target.GithubID)
	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, team.GithubTeamID))
	}
	return nil
}

// HandleTeamMemberAdded mirrors a remote team join into the local store and
// promotes the user when the team is special. Unknown GitHub IDs are
// ignored; a team not yet in the store is handled by name alone.
func (uc *MemberUseCase) HandleTeamMemberAdded(ctx context.Context, githubID types.GithubUserID, teamID types.TeamID, teamName string) error {
	user, name, err := uc.applyRemoteMembership(ctx, githubID, teamID, teamName, true)
	if err != nil || user == nil {
		return err
	}
	return uc.policy.PromoteOnJoin(ctx, user, name)
}

// HandleTeamMemberRemoved mirrors a remote team removal into the local
// store and demotes the user when the team is special
func (uc *MemberUseCase) HandleTeamMemberRemoved(ctx context.Context, githubID types.GithubUserID, teamID types.TeamID, teamName string) error {
	user, name, err := uc.applyRemoteMembership(ctx, githubID, teamID, teamName, false)
	if err != nil || user == nil {
		return err
	}
	return uc.policy.DemoteOnLeave(ctx, user, name)
}

// applyRemoteMembership updates the local member set to match a remote
// membership event and resolves the affected user. A nil user with nil
// error means the GitHub ID has no local record.
func (uc *MemberUseCase) applyRemoteMembership(ctx context.Context, githubID types.GithubUserID, teamID types.TeamID, teamName string, joined bool) (*model.User, string, error) {
	team, err := uc.repo.Team().Get(ctx, teamID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, "", goerr.Wrap(err, "failed to get team", goerr.V(TeamIDKey, teamID))
		}
		team = nil
	}

	name := teamName
	if team != nil {
		name = team.GithubTeamName
		if joined {
			team.AddMember(githubID)
		} else {
			team.RemoveMember(githubID)
		}
		if err := uc.repo.Team().Put(ctx, team); err != nil {
			return nil, "", goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, teamID))
		}
	}

	user, err := uc.repo.User().GetByGithubID(ctx, githubID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", goerr.Wrap(err, "failed to look up user by GitHub ID", goerr.V("github_id", githubID))
	}
	return user, name, nil
}

// authorize resolves the team and verifies the caller may administer it
func (uc *MemberUseCase) authorize(ctx context.Context, callerID types.SlackUserID, teamName string) (*model.Team, error) {
	team, err := findTeamByName(ctx, uc.repo, teamName)
	if err != nil {
		return nil, err
	}

	caller, err := getUser(ctx, uc.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !uc.policy.CanAdminister(caller, team) {
		return nil, goerr.Wrap(ErrPermissionDenied, "membership change requires team lead or admin",
			goerr.V(SlackIDKey, callerID),
			goerr.V(TeamNameKey, teamName))
	}

	return team, nil
}
