package usecase_test

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model/config"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/types"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/repository/memory"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	slacksvc "github.com/ubclaunchpad/rocket2-sub000/pkg/service/slack"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/usecase"
)

// fakeGithub is an in-memory stand-in for the remote team directory. Method
// failures can be injected by name to exercise remote-first semantics.
type fakeGithub struct {
	mu     sync.Mutex
	teams  map[types.TeamID]*github.Team
	logins map[types.GithubUsername]types.GithubUserID
	nextID int64
	fail   map[string]error
}

var _ github.Service = &fakeGithub{}

func newFakeGithub() *fakeGithub {
	return &fakeGithub{
		teams:  map[types.TeamID]*github.Team{},
		logins: map[types.GithubUsername]types.GithubUserID{},
		nextID: 100,
		fail:   map[string]error{},
	}
}

func (f *fakeGithub) addLogin(login types.GithubUsername, id types.GithubUserID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins[login] = id
}

func (f *fakeGithub) addTeam(id types.TeamID, name string, members ...github.TeamMember) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[id] = &github.Team{ID: id, Name: name, Members: members}
	for _, m := range members {
		f.logins[m.Login] = m.ID
	}
}

func (f *fakeGithub) failWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *fakeGithub) failure(method string) error {
	if err, ok := f.fail[method]; ok {
		return err
	}
	return nil
}

func (f *fakeGithub) team(id types.TeamID) *github.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teams[id]
}

func (f *fakeGithub) CreateTeam(ctx context.Context, name string) (types.TeamID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("CreateTeam"); err != nil {
		return "", err
	}
	var id types.TeamID
	for {
		f.nextID++
		id = types.TeamID(strconv.FormatInt(f.nextID, 10))
		if _, taken := f.teams[id]; !taken {
			break
		}
	}
	f.teams[id] = &github.Team{ID: id, Name: name}
	return id, nil
}

func (f *fakeGithub) DeleteTeam(ctx context.Context, id types.TeamID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("DeleteTeam"); err != nil {
		return err
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeGithub) EditTeam(ctx context.Context, id types.TeamID, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("EditTeam"); err != nil {
		return err
	}
	team, ok := f.teams[id]
	if !ok {
		return goerr.Wrap(github.ErrDirectory, "no such team")
	}
	team.Name = name
	return nil
}

func (f *fakeGithub) AddMember(ctx context.Context, username types.GithubUsername, id types.TeamID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("AddMember"); err != nil {
		return err
	}
	team, ok := f.teams[id]
	if !ok {
		return goerr.Wrap(github.ErrDirectory, "no such team")
	}
	userID, ok := f.logins[username]
	if !ok {
		return goerr.Wrap(github.ErrDirectory, "no such user")
	}
	for _, m := range team.Members {
		if m.ID == userID {
			return nil
		}
	}
	team.Members = append(team.Members, github.TeamMember{ID: userID, Login: username})
	return nil
}

func (f *fakeGithub) RemoveMember(ctx context.Context, username types.GithubUsername, id types.TeamID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("RemoveMember"); err != nil {
		return err
	}
	team, ok := f.teams[id]
	if !ok {
		return goerr.Wrap(github.ErrDirectory, "no such team")
	}
	userID := f.logins[username]
	members := team.Members[:0]
	for _, m := range team.Members {
		if m.ID != userID {
			members = append(members, m)
		}
	}
	team.Members = members
	return nil
}

func (f *fakeGithub) HasMember(ctx context.Context, username types.GithubUsername, id types.TeamID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("HasMember"); err != nil {
		return false, err
	}
	team, ok := f.teams[id]
	if !ok {
		return false, nil
	}
	userID := f.logins[username]
	for _, m := range team.Members {
		if m.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGithub) ListTeams(ctx context.Context) ([]*github.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("ListTeams"); err != nil {
		return nil, err
	}
	teams := make([]*github.Team, 0, len(f.teams))
	for _, t := range f.teams {
		copied := *t
		teams = append(teams, &copied)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (f *fakeGithub) LookupUser(ctx context.Context, username types.GithubUsername) (types.GithubUserID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("LookupUser"); err != nil {
		return "", err
	}
	id, ok := f.logins[username]
	if !ok {
		return "", goerr.Wrap(github.ErrDirectory, "no such user")
	}
	return id, nil
}

// fakeSlack serves fixed channel rosters and workspace profiles and records
// posted messages
type fakeSlack struct {
	mu       sync.Mutex
	channels map[string][]string
	users    []*slacksvc.User
	posts    map[string][]string
}

var _ slacksvc.Service = &fakeSlack{}

func (f *fakeSlack) GetUserInfo(ctx context.Context, userID string) (*slacksvc.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return &slacksvc.User{ID: userID}, nil
}

func (f *fakeSlack) ListUsers(ctx context.Context) ([]*slacksvc.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users, nil
}

func (f *fakeSlack) GetChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	return f.channels[channelID], nil
}

func (f *fakeSlack) PostMessage(ctx context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.posts == nil {
		f.posts = map[string][]string{}
	}
	f.posts[channelID] = append(f.posts[channelID], text)
	return nil
}

func (f *fakeSlack) messages(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[channelID]
}

// fakeDrive records folder syncs
type fakeDrive struct {
	mu     sync.Mutex
	synced map[string][]string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{synced: map[string][]string{}}
}

func (f *fakeDrive) SyncFolder(ctx context.Context, folderID string, emails []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced[folderID] = emails
	return nil
}

func (f *fakeDrive) folders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.synced))
	for k := range f.synced {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func testSpecialTeams() config.SpecialTeams {
	return config.SpecialTeams{Leads: "leads", Admins: "admins", All: "all"}
}

func newEngine(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, interfaces.Repository, *fakeGithub) {
	t.Helper()
	repo := memory.New()
	gh := newFakeGithub()
	uc := usecase.New(repo, gh, testSpecialTeams(), opts...)
	return uc, repo, gh
}

// putUser seeds a user; login and githubID may be empty for unlinked users
func putUser(t *testing.T, repo interfaces.Repository, slackID types.SlackUserID, login types.GithubUsername, githubID types.GithubUserID, level types.PermissionLevel) *model.User {
	t.Helper()
	user := model.NewUser(slackID)
	user.Name = string(slackID)
	user.Email = string(slackID) + "@example.com"
	user.GithubUsername = login
	user.GithubID = githubID
	user.PermissionsLevel = level
	gt.NoError(t, repo.User().Put(context.Background(), user)).Required()
	return user
}

// putTeam seeds a local team
func putTeam(t *testing.T, repo interfaces.Repository, id types.TeamID, name string, members, leads []types.GithubUserID) *model.Team {
	t.Helper()
	team := model.NewTeam(id, name)
	for _, m := range members {
		team.AddMember(m)
	}
	for _, l := range leads {
		team.SetLead(l)
	}
	gt.NoError(t, repo.Team().Put(context.Background(), team)).Required()
	return team
}
