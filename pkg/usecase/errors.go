package usecase

import "errors"

// Sentinel errors for the engine layer. The command and webhook layers map
// each kind to a distinct user-facing message; directory failures carry the
// github.ErrDirectory sentinel instead and wrap the remote payload.
var (
	// Lookup failures
	ErrUserNotFound = errors.New("user not found")
	ErrTeamNotFound = errors.New("team not found")

	// Team names are not enforced unique at the storage layer; lookup by
	// name with more than one match is a distinct failure from a miss
	ErrTeamNameAmbiguous = errors.New("team name matches more than one team")

	// Access control
	ErrPermissionDenied = errors.New("permission denied")

	// State errors
	ErrNotInTeam       = errors.New("user not in team")
	ErrGithubNotLinked = errors.New("user has no linked GitHub account")
	ErrSelfKarma       = errors.New("cannot give karma to yourself")
)

// Context keys for error values
const (
	SlackIDKey  = "slack_id"
	TeamIDKey   = "team_id"
	TeamNameKey = "team_name"
)
