package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

func TestTeamLeadsAreAlwaysMembers(t *testing.T) {
	team := model.NewTeam("1", "backend")

	t.Run("SetLead adds the member", func(t *testing.T) {
		team.SetLead("100")
		gt.Bool(t, team.HasMember("100")).True()
		gt.Bool(t, team.HasLead("100")).True()
	})

	t.Run("RemoveMember clears the lead flag", func(t *testing.T) {
		team.RemoveMember("100")
		gt.Bool(t, team.HasMember("100")).False()
		gt.Bool(t, team.HasLead("100")).False()
	})

	t.Run("ReplaceMembers prunes vanished leads", func(t *testing.T) {
		team.AddMember("200")
		team.SetLead("200")
		team.SetLead("300")

		team.ReplaceMembers([]types.GithubUserID{"300", "400"})
		gt.Bool(t, team.HasLead("200")).False()
		gt.Bool(t, team.HasLead("300")).True()
		gt.Array(t, team.Members).Length(2)
	})
}

func TestTeamMutationsAreIdempotent(t *testing.T) {
	team := model.NewTeam("2", "idem")

	team.AddMember("100")
	team.AddMember("100")
	gt.Array(t, team.Members).Length(1)

	team.SetLead("100")
	team.SetLead("100")
	gt.Array(t, team.TeamLeads).Length(1)

	// Unsetting a non-lead is a no-op
	team.UnsetLead("999")
	gt.Array(t, team.TeamLeads).Length(1)

	team.RemoveMember("999")
	gt.Array(t, team.Members).Length(1)
}

func TestTeamValidate(t *testing.T) {
	t.Run("valid team", func(t *testing.T) {
		team := model.NewTeam("3", "ok")
		team.AddMember("100")
		team.SetLead("100")
		gt.NoError(t, team.Validate())
	})

	t.Run("missing ID", func(t *testing.T) {
		team := model.NewTeam("", "noid")
		gt.Value(t, team.Validate()).NotNil()
	})

	t.Run("missing name", func(t *testing.T) {
		team := model.NewTeam("4", "")
		gt.Value(t, team.Validate()).NotNil()
	})

	t.Run("lead outside member set", func(t *testing.T) {
		team := model.NewTeam("5", "bad")
		team.TeamLeads = []types.GithubUserID{"100"}
		gt.Value(t, team.Validate()).NotNil()
	})
}

func TestTeamSameMembers(t *testing.T) {
	team := model.NewTeam("6", "cmp")
	team.AddMember("100")
	team.AddMember("200")

	gt.Bool(t, team.SameMembers([]types.GithubUserID{"200", "100"})).True()
	gt.Bool(t, team.SameMembers([]types.GithubUserID{"100"})).False()
	gt.Bool(t, team.SameMembers([]types.GithubUserID{"100", "300"})).False()
}

func TestTeamClone(t *testing.T) {
	team := model.NewTeam("7", "orig")
	team.AddMember("100")
	team.SetLead("100")

	copied := team.Clone()
	copied.AddMember("200")
	copied.GithubTeamName = "changed"

	gt.Array(t, team.Members).Length(1)
	gt.Value(t, team.GithubTeamName).Equal("orig")
}
