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

type userRepository struct {
	mu    sync.RWMutex
	users map[types.SlackUserID]*model.User
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.SlackUserID]*model.User),
	}
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return goerr.Wrap(err, "user validation failed")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.SlackID] = user.Clone()
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.SlackUserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("slack_id", id))
	}
	return user.Clone(), nil
}

func (r *userRepository) GetByGithubID(ctx context.Context, id types.GithubUserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if id != "" && user.GithubID == id {
			return user.Clone(), nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("github_id", id))
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []types.SlackUserID) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if user, exists := r.users[id]; exists {
			users = append(users, user.Clone())
		}
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user.Clone())
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].SlackID < users[j].SlackID
	})
	return users, nil
}

func (r *userRepository) ListByPermission(ctx context.Context, level types.PermissionLevel) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*model.User
	for _, user := range r.users {
		if user.PermissionsLevel == level {
			users = append(users, user.Clone())
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].SlackID < users[j].SlackID
	})
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id types.SlackUserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}
