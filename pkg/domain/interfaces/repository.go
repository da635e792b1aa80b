package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repository lookups when the requested entity
// does not exist. All backends wrap this sentinel so callers can test with
// errors.Is without knowing the backend.
var ErrNotFound = goerr.New("entity not found")

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Team() TeamRepository

	Close() error
}
