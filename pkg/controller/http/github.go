package http

import (
	"context"
	"net/http"
	"strconv"

	gh "github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/async"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/errutil"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
)

// handleGithubWebhook handles GitHub organization webhooks. Team and
// membership changes trigger a background reconciliation run instead of
// being applied piecemeal; an organization member removal additionally
// cleans up the member's local records.
func (s *Server) handleGithubWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := gh.ValidatePayload(r, []byte(s.githubWebhookSecret))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "github webhook signature verification failed"), http.StatusUnauthorized)
		return
	}

	event, err := gh.ParseWebHook(gh.WebHookType(r), payload)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse github webhook"), http.StatusBadRequest)
		return
	}

	// Respond before doing any work; GitHub only needs the ack
	w.WriteHeader(http.StatusOK)

	switch ev := event.(type) {
	case *gh.TeamEvent:
		s.scheduleRefresh(ctx, "team "+ev.GetAction())

	case *gh.MembershipEvent:
		s.handleMembershipEvent(ctx, ev)

	case *gh.OrganizationEvent:
		if ev.GetAction() == "member_removed" {
			githubID := types.GithubUserID(strconv.FormatInt(ev.GetMembership().GetUser().GetID(), 10))
			async.Dispatch(ctx, func(ctx context.Context) error {
				return s.uc.User.HandleOrgMemberRemoved(ctx, githubID)
			})
			return
		}
		s.scheduleRefresh(ctx, "organization "+ev.GetAction())

	default:
		logging.From(ctx).Info("ignoring github webhook", "type", gh.WebHookType(r))
	}
}

// handleMembershipEvent applies a remote team membership change directly so
// joins promote and removals demote without waiting for a full refresh.
// Other membership actions fall back to a reconciliation run.
func (s *Server) handleMembershipEvent(ctx context.Context, ev *gh.MembershipEvent) {
	githubID := types.GithubUserID(strconv.FormatInt(ev.GetMember().GetID(), 10))
	teamID := types.TeamID(strconv.FormatInt(ev.GetTeam().GetID(), 10))
	teamName := ev.GetTeam().GetSlug()

	switch ev.GetAction() {
	case "added":
		async.Dispatch(ctx, func(ctx context.Context) error {
			return s.uc.Member.HandleTeamMemberAdded(ctx, githubID, teamID, teamName)
		})
	case "removed":
		async.Dispatch(ctx, func(ctx context.Context) error {
			return s.uc.Member.HandleTeamMemberRemoved(ctx, githubID, teamID, teamName)
		})
	default:
		s.scheduleRefresh(ctx, "membership "+ev.GetAction())
	}
}

// scheduleRefresh kicks off a background reconciliation run
func (s *Server) scheduleRefresh(ctx context.Context, reason string) {
	logging.From(ctx).Info("scheduling refresh after github webhook", "reason", reason)

	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := s.uc.Refresh.Run(ctx); err != nil {
			return goerr.Wrap(err, "webhook-triggered refresh failed")
		}
		return nil
	})
}
