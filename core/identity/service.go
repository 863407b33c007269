package identity

import "errors"

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrAuthFailed     = errors.New("invalid credentials")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUnavailable    = errors.New("identity service unavailable")
)

// Service is the contract of the external identity collaborator. All user
// accounts, credentials and group memberships live there; this application
// only ever talks to it through this narrow interface.
type Service interface {
	// Authenticate checks the credentials and returns the matching User.
	// Returns ErrAuthFailed on bad credentials, ErrNotFound on unknown
	// username and ErrUnavailable when the service cannot be reached.
	Authenticate(username, password string) (User, error)

	// GetUser fetches a User by username; ErrNotFound when unknown.
	GetUser(username string) (User, error)

	UserExists(username string) (bool, error)
	EmailExists(email string) (bool, error)

	// GroupsOf returns the names of all groups the user belongs to,
	// nested memberships included.
	GroupsOf(username string) ([]string, error)

	// Register creates the user in the identity service.
	Register(nu NewUser) error
}
