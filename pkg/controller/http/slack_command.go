package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/usecase"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/errutil"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/safe"
)

const commandUsage = `Usage:
/rocket team {list | view <name> | create <name> [options] | edit <name> [options] | delete <name> | add <name> @user | remove <name> @user | lead <name> @user [--remove]}
/rocket user {list [--permission level] | view [@user] | edit [options] | delete @user}
/rocket karma {view [@user] | give @user}
/rocket refresh`

// handleSlackCommand handles /rocket slash command requests. Replies are
// written inline as plain text, which Slack renders as an ephemeral
// message to the caller.
func (s *Server) handleSlackCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	callerID := types.SlackUserID(cmd.UserID)
	args := strings.Fields(cmd.Text)

	logging.From(ctx).Info("slash command",
		"user_id", cmd.UserID,
		"text", cmd.Text,
	)

	// Register first-time callers from their workspace profile so commands
	// like karma work before any team_join event was seen
	if _, err := s.uc.User.EnsureUser(ctx, callerID); err != nil {
		logging.From(ctx).Warn("failed to ensure calling user", "user_id", cmd.UserID, "error", err)
	}

	reply := s.dispatchCommand(ctx, callerID, args)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, []byte(reply))
}

func (s *Server) dispatchCommand(ctx context.Context, callerID types.SlackUserID, args []string) string {
	if len(args) == 0 {
		return commandUsage
	}

	switch args[0] {
	case "team":
		return s.teamCommand(ctx, callerID, args[1:])
	case "user":
		return s.userCommand(ctx, callerID, args[1:])
	case "karma":
		return s.karmaCommand(ctx, callerID, args[1:])
	case "refresh":
		return s.refreshCommand(ctx, callerID)
	case "help":
		return commandUsage
	default:
		return commandUsage
	}
}

func (s *Server) teamCommand(ctx context.Context, callerID types.SlackUserID, args []string) string {
	if len(args) == 0 {
		return commandUsage
	}

	sub, args := args[0], args[1:]
	opts := parseOptions(args)

	switch sub {
	case "list":
		teams, err := s.uc.Team.ListTeams(ctx)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		if len(teams) == 0 {
			return "No teams yet."
		}
		names := make([]string, len(teams))
		for i, t := range teams {
			names[i] = t.GithubTeamName
		}
		return "Teams: " + strings.Join(names, ", ")

	case "view":
		if len(opts.positional) < 1 {
			return "Team name required."
		}
		team, err := s.uc.Team.ViewTeam(ctx, opts.positional[0])
		if err != nil {
			return s.errorReply(ctx, err)
		}
		return formatTeam(team)

	case "create":
		if len(opts.positional) < 1 {
			return "Team name required."
		}
		req := &usecase.CreateTeamRequest{
			Name:        opts.positional[0],
			DisplayName: opts.values["display"],
			Platform:    opts.values["platform"],
			Folder:      opts.values["folder"],
			ChannelID:   parseChannel(opts.values["channel"]),
			LeadID:      types.SlackUserID(parseMention(opts.values["lead"])),
		}
		result, err := s.uc.Team.CreateTeam(ctx, callerID, req)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		reply := fmt.Sprintf("Team %q created with %d members.", result.Team.GithubTeamName, len(result.Team.Members))
		if len(result.Skipped) > 0 {
			reply += fmt.Sprintf(" Skipped %d channel members without a linked GitHub account.", len(result.Skipped))
		}
		return reply

	case "edit":
		if len(opts.positional) < 1 {
			return "Team name required."
		}
		req := &usecase.EditTeamRequest{
			Name:        opts.pointer("name"),
			DisplayName: opts.pointer("display"),
			Platform:    opts.pointer("platform"),
			Folder:      opts.pointer("folder"),
		}
		team, err := s.uc.Team.EditTeam(ctx, callerID, opts.positional[0], req)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		return fmt.Sprintf("Team %q updated.", team.GithubTeamName)

	case "delete":
		if len(opts.positional) < 1 {
			return "Team name required."
		}
		if err := s.uc.Team.DeleteTeam(ctx, callerID, opts.positional[0]); err != nil {
			return s.errorReply(ctx, err)
		}
		return fmt.Sprintf("Team %q deleted.", opts.positional[0])

	case "add", "remove":
		if len(opts.positional) < 2 {
			return "Team name and user required."
		}
		teamName := opts.positional[0]
		targetID := types.SlackUserID(parseMention(opts.positional[1]))

		var err error
		if sub == "add" {
			err = s.uc.Member.AddMember(ctx, callerID, teamName, targetID)
		} else {
			err = s.uc.Member.RemoveMember(ctx, callerID, teamName, targetID)
		}
		if err != nil {
			return s.errorReply(ctx, err)
		}
		if sub == "add" {
			return fmt.Sprintf("Added <@%s> to team %q.", targetID, teamName)
		}
		return fmt.Sprintf("Removed <@%s> from team %q.", targetID, teamName)

	case "lead":
		if len(opts.positional) < 2 {
			return "Team name and user required."
		}
		teamName := opts.positional[0]
		targetID := types.SlackUserID(parseMention(opts.positional[1]))
		remove := opts.flags["remove"]

		if err := s.uc.Member.SetLead(ctx, callerID, teamName, targetID, remove); err != nil {
			return s.errorReply(ctx, err)
		}
		if remove {
			return fmt.Sprintf("<@%s> is no longer a lead of team %q.", targetID, teamName)
		}
		return fmt.Sprintf("<@%s> is now a lead of team %q.", targetID, teamName)

	case "refresh":
		return s.refreshCommand(ctx, callerID)

	default:
		return commandUsage
	}
}

func (s *Server) userCommand(ctx context.Context, callerID types.SlackUserID, args []string) string {
	if len(args) == 0 {
		return commandUsage
	}

	sub, args := args[0], args[1:]
	opts := parseOptions(args)

	switch sub {
	case "list":
		var level *types.PermissionLevel
		if v := opts.values["permission"]; v != "" {
			parsed, err := types.ParsePermissionLevel(v)
			if err != nil {
				return "Unknown permission level. Use member, team_lead or admin."
			}
			level = &parsed
		}
		users, err := s.uc.User.ListUsers(ctx, level)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		if len(users) == 0 {
			return "No users found."
		}
		lines := make([]string, len(users))
		for i, u := range users {
			lines[i] = fmt.Sprintf("<@%s> (%s)", u.SlackID, u.PermissionsLevel)
		}
		return strings.Join(lines, "\n")

	case "view":
		targetID := callerID
		if len(opts.positional) > 0 {
			targetID = types.SlackUserID(parseMention(opts.positional[0]))
		}
		user, err := s.uc.User.ViewUser(ctx, targetID)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		return formatUser(user)

	case "edit":
		targetID := callerID
		if member := opts.values["member"]; member != "" {
			targetID = types.SlackUserID(parseMention(member))
		}
		req := &usecase.EditUserRequest{
			Name:           opts.pointer("name"),
			Email:          opts.pointer("email"),
			GithubUsername: opts.pointer("github"),
			Major:          opts.pointer("major"),
			Position:       opts.pointer("position"),
			Biography:      opts.pointer("bio"),
		}
		user, err := s.uc.User.EditUser(ctx, callerID, targetID, req)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		return fmt.Sprintf("Profile of <@%s> updated.", user.SlackID)

	case "delete":
		if len(opts.positional) < 1 {
			return "User required."
		}
		targetID := types.SlackUserID(parseMention(opts.positional[0]))
		if err := s.uc.User.DeleteUser(ctx, callerID, targetID); err != nil {
			return s.errorReply(ctx, err)
		}
		return fmt.Sprintf("Deleted <@%s>.", targetID)

	default:
		return commandUsage
	}
}

func (s *Server) karmaCommand(ctx context.Context, callerID types.SlackUserID, args []string) string {
	if len(args) == 0 {
		return commandUsage
	}

	sub, args := args[0], args[1:]

	switch sub {
	case "view":
		targetID := callerID
		if len(args) > 0 {
			targetID = types.SlackUserID(parseMention(args[0]))
		}
		karma, err := s.uc.User.ViewKarma(ctx, targetID)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		return fmt.Sprintf("<@%s> has %d karma.", targetID, karma)

	case "give":
		if len(args) < 1 {
			return "User required."
		}
		targetID := types.SlackUserID(parseMention(args[0]))
		karma, err := s.uc.User.AddKarma(ctx, callerID, targetID)
		if err != nil {
			return s.errorReply(ctx, err)
		}
		return fmt.Sprintf("<@%s> now has %d karma.", targetID, karma)

	default:
		return commandUsage
	}
}

func (s *Server) refreshCommand(ctx context.Context, callerID types.SlackUserID) string {
	summary, err := s.uc.Refresh.Refresh(ctx, callerID)
	if err != nil {
		return s.errorReply(ctx, err)
	}
	return fmt.Sprintf("Refresh complete: %d added, %d deleted, %d changed.",
		summary.Added, summary.Deleted, summary.Changed)
}

// errorReply maps engine errors to user-facing messages. Unknown errors are
// logged with full context and replaced by a generic message.
func (s *Server) errorReply(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		return "User not found!"
	case errors.Is(err, usecase.ErrTeamNotFound):
		return "Team not found!"
	case errors.Is(err, usecase.ErrTeamNameAmbiguous):
		return "More than one team has that name. Clean up duplicate teams on GitHub first."
	case errors.Is(err, usecase.ErrPermissionDenied):
		return "You do not have permission to do that."
	case errors.Is(err, usecase.ErrNotInTeam):
		return "User not in team!"
	case errors.Is(err, usecase.ErrGithubNotLinked):
		return "That user has no GitHub account on record. Set one with /rocket user edit --github <username>."
	case errors.Is(err, usecase.ErrSelfKarma):
		return "You can't give karma to yourself!"
	case errors.Is(err, github.ErrDirectory):
		errutil.Handle(ctx, err, "github directory request failed")
		return "GitHub request failed. Try again later."
	default:
		errutil.Handle(ctx, err, "slash command failed")
		return "Something went wrong. Try again later."
	}
}

// commandOptions holds the parsed tokens of a slash command: positional
// arguments plus --key value options and bare --flag switches
type commandOptions struct {
	positional []string
	values     map[string]string
	flags      map[string]bool
}

func parseOptions(args []string) *commandOptions {
	opts := &commandOptions{
		values: map[string]string{},
		flags:  map[string]bool{},
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			opts.positional = append(opts.positional, arg)
			continue
		}

		key := strings.TrimPrefix(arg, "--")
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			opts.values[key] = args[i+1]
			i++
		} else {
			opts.flags[key] = true
		}
	}

	return opts
}

// pointer returns the option value as a pointer, nil when the option was
// not given
func (o *commandOptions) pointer(key string) *string {
	v, ok := o.values[key]
	if !ok {
		return nil
	}
	return &v
}

// parseMention extracts the user ID from a Slack mention token such as
// <@U12345> or <@U12345|name>. Raw IDs pass through.
func parseMention(arg string) string {
	if !strings.HasPrefix(arg, "<@") || !strings.HasSuffix(arg, ">") {
		return arg
	}
	id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
	if i := strings.Index(id, "|"); i >= 0 {
		id = id[:i]
	}
	return id
}

// parseChannel extracts the channel ID from a Slack channel token such as
// <#C12345|general>. Raw IDs pass through.
func parseChannel(arg string) string {
	if !strings.HasPrefix(arg, "<#") || !strings.HasSuffix(arg, ">") {
		return arg
	}
	id := strings.TrimSuffix(strings.TrimPrefix(arg, "<#"), ">")
	if i := strings.Index(id, "|"); i >= 0 {
		id = id[:i]
	}
	return id
}

func formatTeam(team *model.Team) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", team.GithubTeamName)
	if team.DisplayName != "" {
		fmt.Fprintf(&b, " (%s)", team.DisplayName)
	}
	if team.Platform != "" {
		fmt.Fprintf(&b, "\nPlatform: %s", team.Platform)
	}
	if team.Folder != "" {
		fmt.Fprintf(&b, "\nFolder: %s", team.Folder)
	}
	fmt.Fprintf(&b, "\nMembers: %d, Leads: %d", len(team.Members), len(team.TeamLeads))
	return b.String()
}

func formatUser(user *model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*<@%s>*", user.SlackID)
	if user.Name != "" {
		fmt.Fprintf(&b, " %s", user.Name)
	}
	if user.GithubUsername != "" {
		fmt.Fprintf(&b, "\nGitHub: %s", user.GithubUsername)
	}
	if user.Major != "" {
		fmt.Fprintf(&b, "\nMajor: %s", user.Major)
	}
	if user.Position != "" {
		fmt.Fprintf(&b, "\nPosition: %s", user.Position)
	}
	if user.Biography != "" {
		fmt.Fprintf(&b, "\nBio: %s", user.Biography)
	}
	fmt.Fprintf(&b, "\nPermission: %s\nKarma: %d", user.PermissionsLevel, user.Karma)
	return b.String()
}
