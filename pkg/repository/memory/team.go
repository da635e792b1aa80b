package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
)

type teamRepository struct {
	mu    sync.RWMutex
	teams map[types.TeamID]*model.Team
}

var _ interfaces.TeamRepository = &teamRepository{}

func newTeamRepository() *teamRepository {
	return &teamRepository{
		teams: make(map[types.TeamID]*model.Team),
	}
}

func (r *teamRepository) Put(ctx context.Context, team *model.Team) error {
	if err := team.Validate(); err != nil {
		return goerr.Wrap(err, "team validation failed")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.teams[team.GithubTeamID] = team.Clone()
	return nil
}

func (r *teamRepository) Get(ctx context.Context, id types.TeamID) (*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	team, exists := r.teams[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "team not found", goerr.V("team_id", id))
	}
	return team.Clone(), nil
}

func (r *teamRepository) FindByName(ctx context.Context, name string) ([]*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var teams []*model.Team
	for _, team := range r.teams {
		if team.GithubTeamName == name {
			teams = append(teams, team.Clone())
		}
	}
	sortTeams(teams)
	return teams, nil
}

func (r *teamRepository) ListByMember(ctx context.Context, id types.GithubUserID) ([]*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var teams []*model.Team
	for _, team := range r.teams {
		if team.HasMember(id) {
			teams = append(teams, team.Clone())
		}
	}
	sortTeams(teams)
	return teams, nil
}

func (r *teamRepository) List(ctx context.Context) ([]*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := make([]*model.Team, 0, len(r.teams))
	for _, team := range r.teams {
		teams = append(teams, team.Clone())
	}
	sortTeams(teams)
	return teams, nil
}

func (r *teamRepository) Delete(ctx context.Context, id types.TeamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.teams, id)
	return nil
}

func sortTeams(teams []*model.Team) {
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].GithubTeamID < teams[j].GithubTeamID
	})
}
