package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model/config"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
)

// Policy derives authorization decisions and permission-level side effects
// from team membership. The special team names are injected configuration.
type Policy struct {
	repo    interfaces.Repository
	special config.SpecialTeams
}

func NewPolicy(repo interfaces.Repository, special config.SpecialTeams) *Policy {
	return &Policy{
		repo:    repo,
		special: special,
	}
}

// SpecialTeams returns the injected special team configuration
func (p *Policy) SpecialTeams() config.SpecialTeams {
	return p.special
}

// CanAdminister reports whether the user may administer the given team.
// Admins may administer anything. With no team context (organization-wide
// operations such as team creation and refresh) team leads qualify; with a
// team context, only that team's leads do.
func (p *Policy) CanAdminister(user *model.User, team *model.Team) bool {
	if user.PermissionsLevel == types.PermissionAdmin {
		return true
	}
	if team == nil {
		return user.PermissionsLevel == types.PermissionTeamLead
	}
	return user.IsLinked() && team.HasLead(user.GithubID)
}

// PromoteOnJoin applies the promotion rule after the user joined the named
// team. Joining the leads team raises the level to team_lead, joining the
// admins team raises it to admin. Promotion never lowers an existing higher
// level. The user record is persisted only when the level changed.
func (p *Policy) PromoteOnJoin(ctx context.Context, user *model.User, teamName string) error {
	var level types.PermissionLevel
	switch teamName {
	case p.special.Leads:
		level = types.PermissionTeamLead
	case p.special.Admins:
		level = types.PermissionAdmin
	default:
		return nil
	}

	if user.PermissionsLevel.AtLeast(level) {
		return nil
	}

	logging.From(ctx).Info("promoting user",
		"slack_id", user.SlackID,
		"from", user.PermissionsLevel.String(),
		"to", level.String(),
		"team", teamName,
	)

	user.PermissionsLevel = level
	if err := p.repo.User().Put(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to persist promotion", goerr.V(SlackIDKey, user.SlackID))
	}
	return nil
}

// DemoteOnLeave applies the demotion rule after the user left the named
// team. Leaving the leads team demotes to member unless the user is an
// admin who is still a member of the admins team; leaving the admins team
// demotes to team_lead when still in the leads team, else to member. The
// membership checks go through a fresh repository lookup rather than the
// caller's in-memory copy.
func (p *Policy) DemoteOnLeave(ctx context.Context, user *model.User, teamName string) error {
	var level types.PermissionLevel
	switch teamName {
	case p.special.Leads:
		if user.PermissionsLevel == types.PermissionAdmin && p.isMemberOf(ctx, user, p.special.Admins) {
			return nil
		}
		level = types.PermissionMember

	case p.special.Admins:
		if p.isMemberOf(ctx, user, p.special.Leads) {
			level = types.PermissionTeamLead
		} else {
			level = types.PermissionMember
		}

	default:
		return nil
	}

	if user.PermissionsLevel == level {
		return nil
	}

	logging.From(ctx).Info("demoting user",
		"slack_id", user.SlackID,
		"from", user.PermissionsLevel.String(),
		"to", level.String(),
		"team", teamName,
	)

	user.PermissionsLevel = level
	if err := p.repo.User().Put(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to persist demotion", goerr.V(SlackIDKey, user.SlackID))
	}
	return nil
}

// isMemberOf checks current membership of the named team. Lookup failures
// and ambiguous names count as "not a member"; the refresh loop repairs any
// resulting drift.
func (p *Policy) isMemberOf(ctx context.Context, user *model.User, teamName string) bool {
	if !user.IsLinked() {
		return false
	}

	teams, err := p.repo.Team().FindByName(ctx, teamName)
	if err != nil || len(teams) != 1 {
		return false
	}
	return teams[0].HasMember(user.GithubID)
}
