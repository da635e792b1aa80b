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

const teamsCollection = "teams"

type teamRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.TeamRepository = &teamRepository{}

func newTeamRepository(client *firestore.Client) *teamRepository {
	return &teamRepository{client: client}
}

// teamDoc is the Firestore persistence model
type teamDoc struct {
	GithubTeamID   string   `firestore:"github_team_id"`
	GithubTeamName string   `firestore:"github_team_name"`
	DisplayName    string   `firestore:"display_name"`
	Platform       string   `firestore:"platform"`
	Folder         string   `firestore:"folder"`
	Members        []string `firestore:"members"`
	TeamLeads      []string `firestore:"team_leads"`
}

func (r *teamRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + teamsCollection)
	}
	return r.client.Collection(teamsCollection)
}

func toTeamDoc(team *model.Team) *teamDoc {
	doc := &teamDoc{
		GithubTeamID:   string(team.GithubTeamID),
		GithubTeamName: team.GithubTeamName,
		DisplayName:    team.DisplayName,
		Platform:       team.Platform,
		Folder:         team.Folder,
		Members:        make([]string, len(team.Members)),
		TeamLeads:      make([]string, len(team.TeamLeads)),
	}
	for i, m := range team.Members {
		doc.Members[i] = string(m)
	}
	for i, m := range team.TeamLeads {
		doc.TeamLeads[i] = string(m)
	}
	return doc
}

func fromTeamDoc(doc *teamDoc) *model.Team {
	team := &model.Team{
		GithubTeamID:   types.TeamID(doc.GithubTeamID),
		GithubTeamName: doc.GithubTeamName,
		DisplayName:    doc.DisplayName,
		Platform:       doc.Platform,
		Folder:         doc.Folder,
		Members:        make([]types.GithubUserID, len(doc.Members)),
		TeamLeads:      make([]types.GithubUserID, len(doc.TeamLeads)),
	}
	for i, m := range doc.Members {
		team.Members[i] = types.GithubUserID(m)
	}
	for i, m := range doc.TeamLeads {
		team.TeamLeads[i] = types.GithubUserID(m)
	}
	return team
}

func (r *teamRepository) Put(ctx context.Context, team *model.Team) error {
	if err := team.Validate(); err != nil {
		return goerr.Wrap(err, "team validation failed")
	}

	if _, err := r.collection().Doc(string(team.GithubTeamID)).Set(ctx, toTeamDoc(team)); err != nil {
		return goerr.Wrap(err, "failed to put team", goerr.V("team_id", team.GithubTeamID))
	}
	return nil
}

func (r *teamRepository) Get(ctx context.Context, id types.TeamID) (*model.Team, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "team not found", goerr.V("team_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get team", goerr.V("team_id", id))
	}

	var d teamDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal team", goerr.V("team_id", id))
	}
	return fromTeamDoc(&d), nil
}

func (r *teamRepository) FindByName(ctx context.Context, name string) ([]*model.Team, error) {
	return r.queryTeams(ctx, r.collection().Where("github_team_name", "==", name))
}

func (r *teamRepository) ListByMember(ctx context.Context, id types.GithubUserID) ([]*model.Team, error) {
	return r.queryTeams(ctx, r.collection().Where("members", "array-contains", string(id)))
}

func (r *teamRepository) List(ctx context.Context) ([]*model.Team, error) {
	return r.queryTeams(ctx, r.collection().Query)
}

func (r *teamRepository) queryTeams(ctx context.Context, q firestore.Query) ([]*model.Team, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var teams []*model.Team
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate teams")
		}

		var d teamDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal team", goerr.V("doc_id", doc.Ref.ID))
		}
		teams = append(teams, fromTeamDoc(&d))
	}
	return teams, nil
}

func (r *teamRepository) Delete(ctx context.Context, id types.TeamID) error {
	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete team", goerr.V("team_id", id))
	}
	return nil
}
