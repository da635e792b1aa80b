package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

func TestPermissionLevelOrdering(t *testing.T) {
	gt.Bool(t, types.PermissionAdmin.AtLeast(types.PermissionTeamLead)).True()
	gt.Bool(t, types.PermissionAdmin.AtLeast(types.PermissionAdmin)).True()
	gt.Bool(t, types.PermissionTeamLead.AtLeast(types.PermissionAdmin)).False()
	gt.Bool(t, types.PermissionMember.AtLeast(types.PermissionTeamLead)).False()
}

func TestPermissionLevelString(t *testing.T) {
	gt.Value(t, types.PermissionMember.String()).Equal("member")
	gt.Value(t, types.PermissionTeamLead.String()).Equal("team_lead")
	gt.Value(t, types.PermissionAdmin.String()).Equal("admin")
}

func TestParsePermissionLevel(t *testing.T) {
	level, err := types.ParsePermissionLevel("admin")
	gt.NoError(t, err).Required()
	gt.Value(t, level).Equal(types.PermissionAdmin)

	_, err = types.ParsePermissionLevel("emperor")
	gt.Value(t, err).NotNil()
}

func TestPermissionLevelIsValid(t *testing.T) {
	gt.Bool(t, types.PermissionMember.IsValid()).True()
	gt.Bool(t, types.PermissionLevel(0).IsValid()).False()
	gt.Bool(t, types.PermissionLevel(4).IsValid()).False()
}
