package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/repository/firestore"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/repository/memory"
)

// newTestID builds unique IDs so shared Firestore projects do not collide
// across test runs
func newTestID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get roundtrip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.SlackUserID(newTestID("U"))
		user := model.NewUser(id)
		user.Name = "Ada Lovelace"
		user.Email = "ada@example.com"
		user.GithubUsername = "ada"
		user.GithubID = "1001"
		user.Major = "CS"

		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.SlackID).Equal(id)
		gt.Value(t, got.Name).Equal("Ada Lovelace")
		gt.Value(t, got.GithubID).Equal(types.GithubUserID("1001"))
		gt.Value(t, got.PermissionsLevel).Equal(types.PermissionMember)
		gt.Value(t, got.Karma).Equal(model.DefaultKarma)
	})

	t.Run("Put rejects invalid user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.User().Put(ctx, &model.User{})
		gt.Value(t, err).NotNil()
	})

	t.Run("Get returns not-found for missing user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.User().Get(ctx, types.SlackUserID(newTestID("UNOPE")))
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("GetByGithubID finds linked user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.SlackUserID(newTestID("U"))
		githubID := types.GithubUserID(newTestID("42"))
		user := model.NewUser(id)
		user.GithubUsername = "linked"
		user.GithubID = githubID
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		got, err := repo.User().GetByGithubID(ctx, githubID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.SlackID).Equal(id)
	})

	t.Run("GetByGithubID with empty ID is not-found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.User().GetByGithubID(ctx, "")
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("GetByIDs omits missing users", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id1 := types.SlackUserID(newTestID("U1"))
		id2 := types.SlackUserID(newTestID("U2"))
		gt.NoError(t, repo.User().Put(ctx, model.NewUser(id1))).Required()
		gt.NoError(t, repo.User().Put(ctx, model.NewUser(id2))).Required()

		users, err := repo.User().GetByIDs(ctx, []types.SlackUserID{
			id1, types.SlackUserID(newTestID("UMISSING")), id2,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(2)
	})

	t.Run("ListByPermission filters by level", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		member := model.NewUser(types.SlackUserID(newTestID("UM")))
		member.Name = "member"
		admin := model.NewUser(types.SlackUserID(newTestID("UA")))
		admin.Name = "admin"
		admin.PermissionsLevel = types.PermissionAdmin

		gt.NoError(t, repo.User().Put(ctx, member)).Required()
		gt.NoError(t, repo.User().Put(ctx, admin)).Required()

		admins, err := repo.User().ListByPermission(ctx, types.PermissionAdmin)
		gt.NoError(t, err).Required()
		gt.Array(t, admins).Length(1)
		gt.Value(t, admins[0].SlackID).Equal(admin.SlackID)
	})

	t.Run("Delete removes user and tolerates missing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.SlackUserID(newTestID("U"))
		gt.NoError(t, repo.User().Put(ctx, model.NewUser(id))).Required()

		gt.NoError(t, repo.User().Delete(ctx, id)).Required()
		_, err := repo.User().Get(ctx, id)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		// Deleting again is not an error
		gt.NoError(t, repo.User().Delete(ctx, id))
	})

	t.Run("Put overwrites existing user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.SlackUserID(newTestID("U"))
		user := model.NewUser(id)
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		user.Karma = 10
		user.PermissionsLevel = types.PermissionTeamLead
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Karma).Equal(10)
		gt.Value(t, got.PermissionsLevel).Equal(types.PermissionTeamLead)
	})
}

func TestUserRepository_Memory(t *testing.T) {
	runUserRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestUserRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runUserRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix(newTestID("test")))
		gt.NoError(t, err).Required()
		return repo
	})
}
