package usecase

import (
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model/config"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/drive"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/slack"
)

type UseCases struct {
	repo   interfaces.Repository
	github github.Service
	slack  slack.Service
	drive  drive.Service
	policy *Policy

	Team    *TeamUseCase
	Member  *MemberUseCase
	Refresh *RefreshUseCase
	User    *UserUseCase
}

type Option func(*UseCases)

// WithSlackService enables channel roster lookups and user sync
func WithSlackService(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.slack = svc
	}
}

// WithDriveService enables the Drive folder permission sync
func WithDriveService(svc drive.Service) Option {
	return func(uc *UseCases) {
		uc.drive = svc
	}
}

// New wires the reconciliation engine. githubSvc is the remote team
// directory; specialTeams names the teams whose membership drives
// permission levels.
func New(repo interfaces.Repository, githubSvc github.Service, specialTeams config.SpecialTeams, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		github: githubSvc,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.policy = NewPolicy(repo, specialTeams)
	uc.Team = NewTeamUseCase(repo, githubSvc, uc.slack, uc.drive, uc.policy)
	uc.Member = NewMemberUseCase(repo, githubSvc, uc.policy)
	uc.Refresh = NewRefreshUseCase(repo, githubSvc, uc.slack, uc.drive, uc.policy)
	uc.User = NewUserUseCase(repo, githubSvc, uc.slack)

	return uc
}
