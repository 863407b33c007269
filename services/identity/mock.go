package identitysvc

import (
	"sync"

	"github.com/cs-students/markis/core/identity"
)

// MockService is an in-memory identity.Service for tests.
type MockService struct {
	mutex      sync.RWMutex
	users      map[string]identity.User
	passwords  map[string]string
	groups     map[string][]string
	AdminGroup string
}

var _ identity.Service = (*MockService)(nil)

func NewMockService(adminGroup string) *MockService {
	return &MockService{
		users:      make(map[string]identity.User),
		passwords:  make(map[string]string),
		groups:     make(map[string][]string),
		AdminGroup: adminGroup,
	}
}

// AddUser seeds an account, overwriting any existing one.
func (svc *MockService) AddUser(usr identity.User, password string, groups ...string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if usr.Admin {
		groups = append(groups, svc.AdminGroup)
	}
	svc.users[usr.Username] = usr
	svc.passwords[usr.Username] = password
	svc.groups[usr.Username] = groups
}

func (svc *MockService) Authenticate(username, password string) (identity.User, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	usr, ok := svc.users[username]
	if !ok {
		return identity.User{}, identity.ErrNotFound
	}
	if svc.passwords[username] != password {
		return identity.User{}, identity.ErrAuthFailed
	}
	return usr, nil
}

func (svc *MockService) GetUser(username string) (identity.User, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	usr, ok := svc.users[username]
	if !ok {
		return identity.User{}, identity.ErrNotFound
	}
	return usr, nil
}

func (svc *MockService) UserExists(username string) (bool, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	_, ok := svc.users[username]
	return ok, nil
}

func (svc *MockService) EmailExists(email string) (bool, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, usr := range svc.users {
		if usr.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (svc *MockService) GroupsOf(username string) ([]string, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	if _, ok := svc.users[username]; !ok {
		return nil, identity.ErrNotFound
	}
	return svc.groups[username], nil
}

func (svc *MockService) Register(nu identity.NewUser) error {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if _, ok := svc.users[nu.Username]; ok {
		return identity.ErrUsernameExists
	}
	svc.users[nu.Username] = identity.User{
		Username:    nu.Username,
		FirstName:   nu.FirstName,
		LastName:    nu.LastName,
		DisplayName: nu.DisplayName(),
		Email:       nu.Email,
		Active:      true,
	}
	svc.passwords[nu.Username] = nu.Password
	return nil
}
