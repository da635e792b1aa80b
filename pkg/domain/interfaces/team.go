package interfaces

import (
	"context"

	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

// TeamRepository persists Team entities keyed by GitHub team ID
type TeamRepository interface {
	// Put upserts the team after validating required fields
	Put(ctx context.Context, team *model.Team) error

	// Get retrieves a team by GitHub team ID. Returns a not-found error on
	// miss.
	Get(ctx context.Context, id types.TeamID) (*model.Team, error)

	// FindByName retrieves all teams with the given GitHub team name. Team
	// names are not enforced unique at the storage layer, so the result may
	// hold zero, one or many teams; callers decide how to treat ambiguity.
	FindByName(ctx context.Context, name string) ([]*model.Team, error)

	// ListByMember retrieves all teams whose member set contains the given
	// GitHub user ID
	ListByMember(ctx context.Context, id types.GithubUserID) ([]*model.Team, error)

	// List retrieves all teams
	List(ctx context.Context) ([]*model.Team, error)

	// Delete removes the team. Deleting a missing team is not an error.
	Delete(ctx context.Context, id types.TeamID) error
}
