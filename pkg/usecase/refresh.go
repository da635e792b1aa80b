package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/drive"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/slack"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// RefreshUseCase reconciles the local team store with the remote directory.
// The remote directory is authoritative for team existence, names and
// member sets; local-only attributes (display name, platform, folder, lead
// flags) survive the overwrite.
type RefreshUseCase struct {
	repo   interfaces.Repository
	github github.Service
	slack  slack.Service
	drive  drive.Service
	policy *Policy
}

func NewRefreshUseCase(repo interfaces.Repository, githubSvc github.Service, slackSvc slack.Service, driveSvc drive.Service, policy *Policy) *RefreshUseCase {
	return &RefreshUseCase{
		repo:   repo,
		github: githubSvc,
		slack:  slackSvc,
		drive:  driveSvc,
		policy: policy,
	}
}

// RefreshSummary reports what the reconciliation changed in the local store
type RefreshSummary struct {
	Added   int
	Deleted int
	Changed int
}

// Refresh runs the reconciliation on behalf of a user. Team leads and
// admins may trigger it.
func (uc *RefreshUseCase) Refresh(ctx context.Context, callerID types.SlackUserID) (*RefreshSummary, error) {
	caller, err := getUser(ctx, uc.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !uc.policy.CanAdminister(caller, nil) {
		return nil, goerr.Wrap(ErrPermissionDenied, "refresh requires team lead or admin", goerr.V(SlackIDKey, callerID))
	}

	return uc.Run(ctx)
}

// Run reconciles local teams against the remote directory and then applies
// the follow-up passes: workspace user backfill, all-team membership sync,
// the permission sweep over the special teams, and the Drive folder sync
// fan-out.
//
// The diff pass aborts on any store failure so a broken backend cannot
// half-apply the remote state. The follow-up passes log and continue per
// user so one bad record cannot starve the rest.
func (uc *RefreshUseCase) Run(ctx context.Context) (*RefreshSummary, error) {
	remote, err := uc.github.ListTeams(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list remote teams")
	}

	summary, err := uc.applyDiff(ctx, remote)
	if err != nil {
		return nil, err
	}

	uc.syncWorkspaceUsers(ctx)
	if err := uc.ensureAllTeam(ctx); err != nil {
		return nil, err
	}
	uc.sweepPermissions(ctx)
	uc.syncFolders(ctx)

	logging.From(ctx).Info("refresh complete",
		"added", summary.Added,
		"deleted", summary.Deleted,
		"changed", summary.Changed,
	)

	return summary, nil
}

// applyDiff overwrites the local team set with the remote one. Teams gone
// from the remote are deleted, unknown remote teams are added, and teams
// whose name or member set drifted are rewritten. ReplaceMembers prunes
// lead flags of users no longer on the team.
func (uc *RefreshUseCase) applyDiff(ctx context.Context, remote []*github.Team) (*RefreshSummary, error) {
	local, err := uc.repo.Team().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stored teams")
	}

	remoteIDs := make(map[types.TeamID]bool, len(remote))
	for _, rt := range remote {
		remoteIDs[rt.ID] = true
	}

	summary := &RefreshSummary{}

	localByID := make(map[types.TeamID]*model.Team, len(local))
	for _, lt := range local {
		localByID[lt.GithubTeamID] = lt
		if remoteIDs[lt.GithubTeamID] {
			continue
		}
		if err := uc.repo.Team().Delete(ctx, lt.GithubTeamID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete vanished team", goerr.V(TeamIDKey, lt.GithubTeamID))
		}
		summary.Deleted++
	}

	for _, rt := range remote {
		team, ok := localByID[rt.ID]
		if !ok {
			team = model.NewTeam(rt.ID, rt.Name)
			team.ReplaceMembers(rt.MemberIDs())
			if err := uc.repo.Team().Put(ctx, team); err != nil {
				return nil, goerr.Wrap(err, "failed to store new team", goerr.V(TeamIDKey, rt.ID))
			}
			summary.Added++
			continue
		}

		memberIDs := rt.MemberIDs()
		if team.GithubTeamName == rt.Name && team.SameMembers(memberIDs) {
			continue
		}

		team.GithubTeamName = rt.Name
		team.ReplaceMembers(memberIDs)
		if err := uc.repo.Team().Put(ctx, team); err != nil {
			return nil, goerr.Wrap(err, "failed to store changed team", goerr.V(TeamIDKey, rt.ID))
		}
		summary.Changed++
	}

	return summary, nil
}

// ensureAllTeam adds every user with a linked GitHub account to the
// all-members team, remotely and locally. Remote add failures are logged
// per user and do not abort the pass.
func (uc *RefreshUseCase) ensureAllTeam(ctx context.Context) error {
	allName := uc.policy.SpecialTeams().All
	if allName == "" {
		return nil
	}

	team, err := uc.ensureSpecialTeam(ctx, allName)
	if err != nil {
		return err
	}

	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list users")
	}

	logger := logging.From(ctx)
	dirty := false
	for _, user := range users {
		if !user.IsLinked() || user.GithubUsername == "" || team.HasMember(user.GithubID) {
			continue
		}

		if err := uc.github.AddMember(ctx, user.GithubUsername, team.GithubTeamID); err != nil {
			logger.Warn("failed to add user to all-members team",
				"slack_id", user.SlackID,
				"github_username", user.GithubUsername,
				"error", err,
			)
			continue
		}

		team.AddMember(user.GithubID)
		dirty = true
	}

	if !dirty {
		return nil
	}
	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return goerr.Wrap(err, "failed to store all-members team", goerr.V(TeamIDKey, team.GithubTeamID))
	}
	return nil
}

// ensureSpecialTeam resolves the named special team, creating it remotely
// and locally when it does not exist yet
func (uc *RefreshUseCase) ensureSpecialTeam(ctx context.Context, name string) (*model.Team, error) {
	team, err := findTeamByName(ctx, uc.repo, name)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, ErrTeamNotFound) {
		return nil, err
	}

	logging.From(ctx).Info("creating missing special team", "team_name", name)

	id, err := uc.github.CreateTeam(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create special team", goerr.V(TeamNameKey, name))
	}

	team = model.NewTeam(id, name)
	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return nil, goerr.Wrap(err, "failed to store special team", goerr.V(TeamIDKey, id))
	}
	return team, nil
}

// syncWorkspaceUsers backfills local records for workspace members that
// never produced a team_join event. Failures are logged, never fatal.
func (uc *RefreshUseCase) syncWorkspaceUsers(ctx context.Context) {
	if uc.slack == nil {
		return
	}

	logger := logging.From(ctx)

	users, err := uc.slack.ListUsers(ctx)
	if err != nil {
		logger.Warn("failed to list workspace users", "error", err)
		return
	}

	registered := 0
	for _, su := range users {
		if su.IsBot {
			continue
		}
		_, created, err := registerSlackUser(ctx, uc.repo, su)
		if err != nil {
			logger.Warn("failed to register workspace user", "slack_id", su.ID, "error", err)
			continue
		}
		if created {
			registered++
		}
	}
	if registered > 0 {
		logger.Info("registered workspace users", "count", registered)
	}
}

// sweepPermissions promotes users according to their current special-team
// membership. The leads team is processed before the admins team so a user
// on both ends up admin. The sweep only raises levels; demotion happens
// through the explicit leave paths. A missing special team is created on
// demand like the all-members team.
func (uc *RefreshUseCase) sweepPermissions(ctx context.Context) {
	special := uc.policy.SpecialTeams()
	for _, name := range []string{special.Leads, special.Admins} {
		if name == "" {
			continue
		}
		uc.promoteTeamMembers(ctx, name)
	}
}

func (uc *RefreshUseCase) promoteTeamMembers(ctx context.Context, teamName string) {
	logger := logging.From(ctx)

	team, err := uc.ensureSpecialTeam(ctx, teamName)
	if err != nil {
		logger.Warn("failed to resolve special team", "team_name", teamName, "error", err)
		return
	}

	for _, githubID := range team.Members {
		user, err := uc.repo.User().GetByGithubID(ctx, githubID)
		if err != nil {
			continue
		}
		if err := uc.policy.PromoteOnJoin(ctx, user, teamName); err != nil {
			logger.Warn("failed to promote user",
				"slack_id", user.SlackID,
				"team_name", teamName,
				"error", err,
			)
		}
	}
}

// syncFolders fans the Drive permission sync out over all teams with a
// folder. Sync failures are logged, never fatal.
func (uc *RefreshUseCase) syncFolders(ctx context.Context) {
	if uc.drive == nil {
		return
	}

	teams, err := uc.repo.Team().List(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to list teams for folder sync", "error", err)
		return
	}

	logger := logging.From(ctx)

	var eg errgroup.Group
	eg.SetLimit(4)
	for _, team := range teams {
		if team.Folder == "" {
			continue
		}

		eg.Go(func() error {
			emails := memberEmails(ctx, uc.repo, team)
			if err := uc.drive.SyncFolder(ctx, team.Folder, emails); err != nil {
				logger.Warn("drive folder sync failed",
					"team_id", team.GithubTeamID,
					"folder", team.Folder,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = eg.Wait()
}
