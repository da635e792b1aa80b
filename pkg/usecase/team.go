package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/drive"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/slack"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
)

// TeamUseCase implements team lifecycle operations. Every mutation goes to
// the remote directory first; the local record is only written after the
// remote call succeeded, so a directory failure leaves the local store
// untouched.
type TeamUseCase struct {
	repo   interfaces.Repository
	github github.Service
	slack  slack.Service
	drive  drive.Service
	policy *Policy
}

func NewTeamUseCase(repo interfaces.Repository, githubSvc github.Service, slackSvc slack.Service, driveSvc drive.Service, policy *Policy) *TeamUseCase {
	return &TeamUseCase{
		repo:   repo,
		github: githubSvc,
		slack:  slackSvc,
		drive:  driveSvc,
		policy: policy,
	}
}

// CreateTeamRequest carries the parameters of a team creation
type CreateTeamRequest struct {
	Name        string // GitHub team name, required
	DisplayName string
	Platform    string
	Folder      string            // optional Drive folder ID
	ChannelID   string            // optional Slack channel whose roster seeds the member set
	LeadID      types.SlackUserID // optional team lead
}

// CreateTeamResult reports the created team and the channel members that
// could not be added (no local record or no linked GitHub account)
type CreateTeamResult struct {
	Team    *model.Team
	Skipped []types.SlackUserID
}

// CreateTeam creates the team remotely, then builds and persists the local
// record. When a channel is given its human members seed the member set;
// when a lead is given they become team lead; when neither is given the
// creator becomes the team lead.
func (uc *TeamUseCase) CreateTeam(ctx context.Context, callerID types.SlackUserID, req *CreateTeamRequest) (*CreateTeamResult, error) {
	caller, err := getUser(ctx, uc.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !uc.policy.CanAdminister(caller, nil) {
		return nil, goerr.Wrap(ErrPermissionDenied, "team creation requires team lead or admin", goerr.V(SlackIDKey, callerID))
	}
	if req.Name == "" {
		return nil, goerr.New("team name is required")
	}

	teamID, err := uc.github.CreateTeam(ctx, req.Name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create remote team", goerr.V(TeamNameKey, req.Name))
	}

	team := model.NewTeam(teamID, req.Name)
	team.DisplayName = req.DisplayName
	team.Platform = req.Platform
	team.Folder = req.Folder

	result := &CreateTeamResult{Team: team}

	if req.ChannelID != "" && uc.slack != nil {
		if err := uc.addChannelMembers(ctx, team, req.ChannelID, result); err != nil {
			return nil, err
		}
	}

	switch {
	case req.LeadID != "":
		lead, err := getUser(ctx, uc.repo, req.LeadID)
		if err != nil {
			return nil, err
		}
		if err := uc.addLead(ctx, team, lead); err != nil {
			return nil, err
		}

	case req.ChannelID == "":
		// No explicit roster at all: the creator leads their own team
		if err := uc.addLead(ctx, team, caller); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return nil, goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, team.GithubTeamID))
	}

	uc.syncFolder(ctx, team)
	uc.announceTeam(ctx, team, req.ChannelID)

	return result, nil
}

// announceTeam posts a creation notice to the team's channel. Failures are
// logged and never fail the creation.
func (uc *TeamUseCase) announceTeam(ctx context.Context, team *model.Team, channelID string) {
	if uc.slack == nil || channelID == "" {
		return
	}

	msg := fmt.Sprintf("Team %q has been created with %d members.", team.GithubTeamName, len(team.Members))
	if err := uc.slack.PostMessage(ctx, channelID, msg); err != nil {
		logging.From(ctx).Warn("failed to announce team creation",
			"team_id", team.GithubTeamID,
			"channel_id", channelID,
			"error", err,
		)
	}
}

// addChannelMembers seeds the team with the channel's human members. Users
// without a local record or a usable GitHub link are skipped and reported,
// not fatal; remote add failures abort.
func (uc *TeamUseCase) addChannelMembers(ctx context.Context, team *model.Team, channelID string, result *CreateTeamResult) error {
	roster, err := uc.slack.GetChannelMembers(ctx, channelID)
	if err != nil {
		return goerr.Wrap(err, "failed to read channel roster", goerr.V("channel_id", channelID))
	}

	for _, memberID := range roster {
		slackID := types.SlackUserID(memberID)

		user, err := getUser(ctx, uc.repo, slackID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				result.Skipped = append(result.Skipped, slackID)
				continue
			}
			return err
		}

		if err := linkGithubID(ctx, uc.repo, uc.github, user); err != nil {
			if errors.Is(err, ErrGithubNotLinked) {
				result.Skipped = append(result.Skipped, slackID)
				continue
			}
			return err
		}

		if err := uc.github.AddMember(ctx, user.GithubUsername, team.GithubTeamID); err != nil {
			return goerr.Wrap(err, "failed to add channel member to remote team",
				goerr.V(SlackIDKey, slackID),
				goerr.V(TeamIDKey, team.GithubTeamID))
		}
		team.AddMember(user.GithubID)

		if err := uc.policy.PromoteOnJoin(ctx, user, team.GithubTeamName); err != nil {
			return err
		}
	}

	return nil
}

// addLead links the user's GitHub account, ensures remote membership and
// marks them as team lead. A user already on the remote team is not
// re-added.
func (uc *TeamUseCase) addLead(ctx context.Context, team *model.Team, lead *model.User) error {
	if err := linkGithubID(ctx, uc.repo, uc.github, lead); err != nil {
		return err
	}

	isMember, err := uc.github.HasMember(ctx, lead.GithubUsername, team.GithubTeamID)
	if err != nil {
		return goerr.Wrap(err, "failed to check remote membership",
			goerr.V(SlackIDKey, lead.SlackID),
			goerr.V(TeamIDKey, team.GithubTeamID))
	}
	if !isMember {
		if err := uc.github.AddMember(ctx, lead.GithubUsername, team.GithubTeamID); err != nil {
			return goerr.Wrap(err, "failed to add lead to remote team",
				goerr.V(SlackIDKey, lead.SlackID),
				goerr.V(TeamIDKey, team.GithubTeamID))
		}
	}

	team.SetLead(lead.GithubID)

	return uc.policy.PromoteOnJoin(ctx, lead, team.GithubTeamName)
}

// EditTeamRequest carries the editable team attributes. Nil fields are left
// unchanged.
type EditTeamRequest struct {
	Name        *string // renames the team remotely and locally
	DisplayName *string
	Platform    *string
	Folder      *string
}

// EditTeam updates the team's attributes. A rename goes to the remote
// directory first; a folder change triggers a Drive permission sync.
func (uc *TeamUseCase) EditTeam(ctx context.Context, callerID types.SlackUserID, teamName string, req *EditTeamRequest) (*model.Team, error) {
	team, err := findTeamByName(ctx, uc.repo, teamName)
	if err != nil {
		return nil, err
	}

	caller, err := getUser(ctx, uc.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !uc.policy.CanAdminister(caller, team) {
		return nil, goerr.Wrap(ErrPermissionDenied, "team edit requires team lead or admin",
			goerr.V(SlackIDKey, callerID),
			goerr.V(TeamNameKey, teamName))
	}

	if req.Name != nil && *req.Name != team.GithubTeamName {
		if err := uc.github.EditTeam(ctx, team.GithubTeamID, *req.Name, ""); err != nil {
			return nil, goerr.Wrap(err, "failed to rename remote team", goerr.V(TeamIDKey, team.GithubTeamID))
		}
		team.GithubTeamName = *req.Name
	}
	if req.DisplayName != nil {
		team.DisplayName = *req.DisplayName
	}
	if req.Platform != nil {
		team.Platform = *req.Platform
	}

	folderChanged := false
	if req.Folder != nil && *req.Folder != team.Folder {
		team.Folder = *req.Folder
		folderChanged = true
	}

	if err := uc.repo.Team().Put(ctx, team); err != nil {
		return nil, goerr.Wrap(err, "failed to store team", goerr.V(TeamIDKey, team.GithubTeamID))
	}

	if folderChanged {
		uc.syncFolder(ctx, team)
	}

	return team, nil
}

// DeleteTeam removes the team remotely and then locally. A remote failure
// aborts the whole operation and leaves the local record in place. Special
// teams can only be deleted by an admin.
func (uc *TeamUseCase) DeleteTeam(ctx context.Context, callerID types.SlackUserID, teamName string) error {
	team, err := findTeamByName(ctx, uc.repo, teamName)
	if err != nil {
		return err
	}

	caller, err := getUser(ctx, uc.repo, callerID)
	if err != nil {
		return err
	}
	if !uc.policy.CanAdminister(caller, team) {
		return goerr.Wrap(ErrPermissionDenied, "team deletion requires team lead or admin",
			goerr.V(SlackIDKey, callerID),
			goerr.V(TeamNameKey, teamName))
	}
	if uc.policy.SpecialTeams().IsSpecial(team.GithubTeamName) && caller.PermissionsLevel != types.PermissionAdmin {
		return goerr.Wrap(ErrPermissionDenied, "deleting a special team requires admin",
			goerr.V(SlackIDKey, callerID),
			goerr.V(TeamNameKey, teamName))
	}

	if err := uc.github.DeleteTeam(ctx, team.GithubTeamID); err != nil {
		return goerr.Wrap(err, "failed to delete remote team", goerr.V(TeamIDKey, team.GithubTeamID))
	}

	if err := uc.repo.Team().Delete(ctx, team.GithubTeamID); err != nil {
		return goerr.Wrap(err, "failed to delete stored team", goerr.V(TeamIDKey, team.GithubTeamID))
	}

	return nil
}

// ViewTeam retrieves a team by name. Viewing needs no permission.
func (uc *TeamUseCase) ViewTeam(ctx context.Context, teamName string) (*model.Team, error) {
	return findTeamByName(ctx, uc.repo, teamName)
}

// ListTeams retrieves all locally stored teams
func (uc *TeamUseCase) ListTeams(ctx context.Context) ([]*model.Team, error) {
	teams, err := uc.repo.Team().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list teams")
	}
	return teams, nil
}

// syncFolder grants Drive folder access to the team's members. Failures are
// logged and never fail the calling operation.
func (uc *TeamUseCase) syncFolder(ctx context.Context, team *model.Team) {
	if uc.drive == nil || team.Folder == "" {
		return
	}

	emails := memberEmails(ctx, uc.repo, team)
	if err := uc.drive.SyncFolder(ctx, team.Folder, emails); err != nil {
		logging.From(ctx).Warn("drive folder sync failed",
			"team_id", team.GithubTeamID,
			"folder", team.Folder,
			"error", err,
		)
	}
}
