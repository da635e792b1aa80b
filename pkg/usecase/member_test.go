package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/usecase"
)

func TestAddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("member caller is denied", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UMEMBER", "pleb", "1", types.PermissionMember)
		putUser(t, repo, "UT", "target", "2", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)
		gh.addTeam("300", "web")

		err := uc.Member.AddMember(ctx, "UMEMBER", "web", "UT")
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("links the GitHub ID on first use and persists it", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)
		gh.addTeam("300", "web")
		gh.addLogin("tdev", "55")

		gt.NoError(t, uc.Member.AddMember(ctx, "UADMIN", "web", "UT")).Required()

		team, err := repo.Team().Get(ctx, "300")
		gt.NoError(t, err).Required()
		gt.Bool(t, team.HasMember("55")).True()

		target, err := repo.User().Get(ctx, "UT")
		gt.NoError(t, err).Required()
		gt.Value(t, target.GithubID).Equal(types.GithubUserID("55"))

		gt.Array(t, gh.team("300").Members).Length(1)
	})

	t.Run("target without GitHub username is rejected", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "", "", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)
		gh.addTeam("300", "web")

		err := uc.Member.AddMember(ctx, "UADMIN", "web", "UT")
		gt.Bool(t, errors.Is(err, usecase.ErrGithubNotLinked)).True()
	})

	t.Run("unknown GitHub username fails with a directory error", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "nobody", "", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)
		gh.addTeam("300", "web")

		err := uc.Member.AddMember(ctx, "UADMIN", "web", "UT")
		gt.Bool(t, errors.Is(err, github.ErrDirectory)).True()
	})

	t.Run("joining the leads team promotes the target", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionMember)
		putTeam(t, repo, "400", "leads", nil, nil)
		gh.addTeam("400", "leads")
		gh.addLogin("tdev", "55")

		gt.NoError(t, uc.Member.AddMember(ctx, "UADMIN", "leads", "UT")).Required()

		target, err := repo.User().Get(ctx, "UT")
		gt.NoError(t, err).Required()
		gt.Value(t, target.PermissionsLevel).Equal(types.PermissionTeamLead)
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("user not on the remote team", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)
		gh.addTeam("300", "web")

		err := uc.Member.RemoveMember(ctx, "UADMIN", "web", "UT")
		gt.Bool(t, errors.Is(err, usecase.ErrNotInTeam)).True()
	})

	t.Run("removes locally and remotely", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionMember)
		putTeam(t, repo, "300", "web", []types.GithubUserID{"55"}, nil)
		gh.addTeam("300", "web", github.TeamMember{ID: "55", Login: "tdev"})

		gt.NoError(t, uc.Member.RemoveMember(ctx, "UADMIN", "web", "UT")).Required()

		team, err := repo.Team().Get(ctx, "300")
		gt.NoError(t, err).Required()
		gt.Bool(t, team.HasMember("55")).False()
		gt.Array(t, gh.team("300").Members).Length(0)
	})

	t.Run("admin on both special teams steps down one team at a time", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionAdmin)
		putTeam(t, repo, "400", "leads", []types.GithubUserID{"55"}, nil)
		putTeam(t, repo, "401", "admins", []types.GithubUserID{"55"}, nil)
		gh.addTeam("400", "leads", github.TeamMember{ID: "55", Login: "tdev"})
		gh.addTeam("401", "admins", github.TeamMember{ID: "55", Login: "tdev"})

		gt.NoError(t, uc.Member.RemoveMember(ctx, "UADMIN", "admins", "UT")).Required()
		target, err := repo.User().Get(ctx, "UT")
		gt.NoError(t, err).Required()
		gt.Value(t, target.PermissionsLevel).Equal(types.PermissionTeamLead)

		gt.NoError(t, uc.Member.RemoveMember(ctx, "UADMIN", "leads", "UT")).Required()
		target, err = repo.User().Get(ctx, "UT")
		gt.NoError(t, err).Required()
		gt.Value(t, target.PermissionsLevel).Equal(types.PermissionMember)
	})

	t.Run("leaving the leads team demotes the target", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionTeamLead)
		putTeam(t, repo, "400", "leads", []types.GithubUserID{"55"}, nil)
		gh.addTeam("400", "leads", github.TeamMember{ID: "55", Login: "tdev"})

		gt.NoError(t, uc.Member.RemoveMember(ctx, "UADMIN", "leads", "UT")).Required()

		target, err := repo.User().Get(ctx, "UT")
		gt.NoError(t, err).Required()
		gt.Value(t, target.PermissionsLevel).Equal(types.PermissionMember)
	})
}

func TestSetLead(t *testing.T) {
	ctx := context.Background()

	t.Run("granting lead to a non-member adds them first", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)
		gh.addTeam("300", "web")
		gh.addLogin("tdev", "55")

		gt.NoError(t, uc.Member.SetLead(ctx, "UADMIN", "web", "UT", false)).Required()

		team, err := repo.Team().Get(ctx, "300")
		gt.NoError(t, err).Required()
		gt.Bool(t, team.HasMember("55")).True()
		gt.Bool(t, team.HasLead("55")).True()
		gt.Array(t, gh.team("300").Members).Length(1)
	})

	t.Run("revoking lead from a non-member fails", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)
		gh.addTeam("300", "web")

		err := uc.Member.SetLead(ctx, "UADMIN", "web", "UT", true)
		gt.Bool(t, errors.Is(err, usecase.ErrNotInTeam)).True()
	})

	t.Run("revoking lead from a plain member is a no-op", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionMember)
		putTeam(t, repo, "300", "web", []types.GithubUserID{"55"}, nil)
		gh.addTeam("300", "web", github.TeamMember{ID: "55", Login: "tdev"})

		gt.NoError(t, uc.Member.SetLead(ctx, "UADMIN", "web", "UT", true))
	})

	t.Run("revoking lead keeps team membership", func(t *testing.T) {
		uc, repo, gh := newEngine(t)
		putUser(t, repo, "UADMIN", "boss", "1", types.PermissionAdmin)
		putUser(t, repo, "UT", "tdev", "55", types.PermissionMember)
		putTeam(t, repo, "300", "web", []types.GithubUserID{"55"}, []types.GithubUserID{"55"})
		gh.addTeam("300", "web", github.TeamMember{ID: "55", Login: "tdev"})

		gt.NoError(t, uc.Member.SetLead(ctx, "UADMIN", "web", "UT", true)).Required()

		team, err := repo.Team().Get(ctx, "300")
		gt.NoError(t, err).Required()
		gt.Bool(t, team.HasLead("55")).False()
		gt.Bool(t, team.HasMember("55")).True()
	})
}

func TestHandleTeamMemberAdded(t *testing.T) {
	ctx := context.Background()

	t.Run("join of the leads team promotes and syncs the member set", func(t *testing.T) {
		uc, repo, _ := newEngine(t)
		putUser(t, repo, "U1", "alice", "20", types.PermissionMember)
		putTeam(t, repo, "910", "leads", nil, nil)

		gt.NoError(t, uc.Member.HandleTeamMemberAdded(ctx, "20", "910", "leads")).Required()

		team, err := repo.Team().Get(ctx, "910")
		gt.NoError(t, err).Required()
		gt.Bool(t, team.HasMember("20")).True()

		alice, err := repo.User().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.PermissionsLevel).Equal(types.PermissionTeamLead)
	})

	t.Run("join of an ordinary team keeps the level", func(t *testing.T) {
		uc, repo, _ := newEngine(t)
		putUser(t, repo, "U1", "alice", "20", types.PermissionMember)
		putTeam(t, repo, "300", "web", nil, nil)

		gt.NoError(t, uc.Member.HandleTeamMemberAdded(ctx, "20", "300", "web")).Required()

		alice, err := repo.User().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.PermissionsLevel).Equal(types.PermissionMember)
	})

	t.Run("unknown GitHub ID is ignored", func(t *testing.T) {
		uc, _, _ := newEngine(t)
		gt.NoError(t, uc.Member.HandleTeamMemberAdded(ctx, "404", "910", "leads"))
	})
}

func TestHandleTeamMemberRemoved(t *testing.T) {
	ctx := context.Background()

	t.Run("admin removed from the admins team is demoted", func(t *testing.T) {
		uc, repo, _ := newEngine(t)
		putUser(t, repo, "U1", "alice", "20", types.PermissionAdmin)
		putTeam(t, repo, "911", "admins", []types.GithubUserID{"20"}, nil)

		gt.NoError(t, uc.Member.HandleTeamMemberRemoved(ctx, "20", "911", "admins")).Required()

		team, err := repo.Team().Get(ctx, "911")
		gt.NoError(t, err).Required()
		gt.Bool(t, team.HasMember("20")).False()

		alice, err := repo.User().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.PermissionsLevel).Equal(types.PermissionMember)
	})

	t.Run("remaining leads membership keeps the lead level", func(t *testing.T) {
		uc, repo, _ := newEngine(t)
		putUser(t, repo, "U1", "alice", "20", types.PermissionAdmin)
		putTeam(t, repo, "910", "leads", []types.GithubUserID{"20"}, nil)
		putTeam(t, repo, "911", "admins", []types.GithubUserID{"20"}, nil)

		gt.NoError(t, uc.Member.HandleTeamMemberRemoved(ctx, "20", "911", "admins")).Required()

		alice, err := repo.User().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.PermissionsLevel).Equal(types.PermissionTeamLead)
	})

	t.Run("team missing locally falls back to the event team name", func(t *testing.T) {
		uc, repo, _ := newEngine(t)
		putUser(t, repo, "U1", "alice", "20", types.PermissionAdmin)

		gt.NoError(t, uc.Member.HandleTeamMemberRemoved(ctx, "20", "999", "admins")).Required()

		alice, err := repo.User().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.PermissionsLevel).Equal(types.PermissionMember)
	})

	t.Run("removal from an ordinary team keeps the level", func(t *testing.T) {
		uc, repo, _ := newEngine(t)
		putUser(t, repo, "U1", "alice", "20", types.PermissionTeamLead)
		putTeam(t, repo, "300", "web", []types.GithubUserID{"20"}, nil)

		gt.NoError(t, uc.Member.HandleTeamMemberRemoved(ctx, "20", "300", "web")).Required()

		alice, err := repo.User().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.PermissionsLevel).Equal(types.PermissionTeamLead)
	})

	t.Run("unknown GitHub ID is ignored", func(t *testing.T) {
		uc, _, _ := newEngine(t)
		gt.NoError(t, uc.Member.HandleTeamMemberRemoved(ctx, "404", "911", "admins"))
	})
}
