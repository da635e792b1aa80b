package memory

import (
	"github.com/ubclaunchpad/rocket2-sub000/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = interfaces.ErrNotFound

// Memory is an in-memory Repository implementation for development and
// testing
type Memory struct {
	user *userRepository
	team *teamRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		user: newUserRepository(),
		team: newTeamRepository(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Team() interfaces.TeamRepository {
	return m.team
}

func (m *Memory) Close() error {
	return nil
}
