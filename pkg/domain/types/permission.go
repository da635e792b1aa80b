package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// PermissionLevel is the ordered authorization level stored per user.
// member < team_lead < admin.
type PermissionLevel int

const (
	PermissionMember PermissionLevel = iota + 1
	PermissionTeamLead
	PermissionAdmin
)

// String returns the human-readable name of the level
func (x PermissionLevel) String() string {
	switch x {
	case PermissionMember:
		return "member"
	case PermissionTeamLead:
		return "team_lead"
	case PermissionAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// IsValid checks if the permission level is one of the defined levels
func (x PermissionLevel) IsValid() bool {
	return x >= PermissionMember && x <= PermissionAdmin
}

// AtLeast reports whether the level meets or exceeds the given level
func (x PermissionLevel) AtLeast(level PermissionLevel) bool {
	return x >= level
}

// ParsePermissionLevel converts a level name to a PermissionLevel
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch s {
	case "member":
		return PermissionMember, nil
	case "team_lead":
		return PermissionTeamLead, nil
	case "admin":
		return PermissionAdmin, nil
	default:
		return 0, goerr.New("unknown permission level", goerr.V("level", s))
	}
}
