package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{client: client}
}

// userDoc is the Firestore persistence model
type userDoc struct {
	SlackID          string `firestore:"slack_id"`
	Name             string `firestore:"name"`
	Email            string `firestore:"email"`
	GithubUsername   string `firestore:"github_username"`
	GithubID         string `firestore:"github_id"`
	Major            string `firestore:"major"`
	Position         string `firestore:"position"`
	Biography        string `firestore:"biography"`
	ImageURL         string `firestore:"image_url"`
	PermissionsLevel int    `firestore:"permissions_level"`
	Karma            int    `firestore:"karma"`
}

func (r *userRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + usersCollection)
	}
	return r.client.Collection(usersCollection)
}

func toUserDoc(user *model.User) *userDoc {
	return &userDoc{
		SlackID:          string(user.SlackID),
		Name:             user.Name,
		Email:            user.Email,
		GithubUsername:   string(user.GithubUsername),
		GithubID:         string(user.GithubID),
		Major:            user.Major,
		Position:         user.Position,
		Biography:        user.Biography,
		ImageURL:         user.ImageURL,
		PermissionsLevel: int(user.PermissionsLevel),
		Karma:            user.Karma,
	}
}

func fromUserDoc(doc *userDoc) *model.User {
	return &model.User{
		SlackID:          types.SlackUserID(doc.SlackID),
		Name:             doc.Name,
		Email:            doc.Email,
		GithubUsername:   types.GithubUsername(doc.GithubUsername),
		GithubID:         types.GithubUserID(doc.GithubID),
		Major:            doc.Major,
		Position:         doc.Position,
		Biography:        doc.Biography,
		ImageURL:         doc.ImageURL,
		PermissionsLevel: types.PermissionLevel(doc.PermissionsLevel),
		Karma:            doc.Karma,
	}
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return goerr.Wrap(err, "user validation failed")
	}

	if _, err := r.collection().Doc(string(user.SlackID)).Set(ctx, toUserDoc(user)); err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("slack_id", user.SlackID))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.SlackUserID) (*model.User, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("slack_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("slack_id", id))
	}

	var d userDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("slack_id", id))
	}
	return fromUserDoc(&d), nil
}

func (r *userRepository) GetByGithubID(ctx context.Context, id types.GithubUserID) (*model.User, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("github_id", id))
	}

	iter := r.collection().Where("github_id", "==", string(id)).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("github_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user by github ID", goerr.V("github_id", id))
	}

	var d userDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("github_id", id))
	}
	return fromUserDoc(&d), nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []types.SlackUserID) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = r.collection().Doc(string(id))
	}

	users := make([]*model.User, 0, len(ids))
	// Firestore caps GetAll batches; split to stay under the limit
	const batchSize = 30
	for start := 0; start < len(refs); start += batchSize {
		end := min(start+batchSize, len(refs))

		docs, err := r.client.GetAll(ctx, refs[start:end])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to bulk get users")
		}
		for _, doc := range docs {
			if !doc.Exists() {
				continue
			}
			var d userDoc
			if err := doc.DataTo(&d); err != nil {
				return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("doc_id", doc.Ref.ID))
			}
			users = append(users, fromUserDoc(&d))
		}
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	return r.queryUsers(ctx, r.collection().Query)
}

// ListByPermission orders by name for stable output; the composite index is
// managed by the migrate command.
func (r *userRepository) ListByPermission(ctx context.Context, level types.PermissionLevel) ([]*model.User, error) {
	return r.queryUsers(ctx, r.collection().
		Where("permissions_level", "==", int(level)).
		OrderBy("name", firestore.Asc))
}

func (r *userRepository) queryUsers(ctx context.Context, q firestore.Query) ([]*model.User, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var d userDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("doc_id", doc.Ref.ID))
		}
		users = append(users, fromUserDoc(&d))
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id types.SlackUserID) error {
	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("slack_id", id))
	}
	return nil
}
