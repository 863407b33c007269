package identitysvc

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/identity"
)

// crowdService talks to an Atlassian Crowd server over its usermanagement
// REST API. The application authenticates itself with basic auth; users,
// credentials and groups all live in Crowd.
type crowdService struct {
	restURL    string
	authHeader string
	adminGroup string
	client     rest.Client
	logger     core.Logger
}

var _ identity.Service = (*crowdService)(nil)

func NewCrowdService(conf *core.Config, logger core.Logger) *crowdService {
	creds := conf.Crowd.AppName + ":" + conf.Crowd.AppPassword
	return &crowdService{
		restURL:    strings.TrimRight(conf.Crowd.URL, "/") + "/rest/usermanagement/latest",
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(creds)),
		adminGroup: conf.Crowd.AdminGroup,
		client:     rest.Client{HTTPClient: &http.Client{Timeout: conf.Crowd.Timeout}},
		logger:     logger,
	}
}

// crowdUser is Crowd's JSON rendition of a user account.
type crowdUser struct {
	Name        string `json:"name"`
	FirstName   string `json:"first-name"`
	LastName    string `json:"last-name"`
	DisplayName string `json:"display-name"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
}

type crowdGroups struct {
	Groups []struct {
		Name string `json:"name"`
	} `json:"groups"`
}

type crowdPassword struct {
	Value string `json:"value"`
}

type crowdNewUser struct {
	crowdUser
	Password crowdPassword `json:"password"`
}

func (svc *crowdService) send(method rest.Method, path string, params map[string]string, body interface{}) (*rest.Response, error) {
	req := rest.Request{
		Method:  method,
		BaseURL: svc.restURL + path,
		Headers: map[string]string{
			"Authorization": svc.authHeader,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		QueryParams: params,
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request")
		}
		req.Body = data
	}

	resp, err := svc.client.Send(req)
	if err != nil {
		svc.logger.Error("identity service unreachable", "err", err)
		return nil, identity.ErrUnavailable
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		svc.logger.Error("identity service error", "status", resp.StatusCode, "body", resp.Body)
		return nil, identity.ErrUnavailable
	}
	return resp, nil
}

func (svc *crowdService) user(cu crowdUser) identity.User {
	usr := identity.User{
		Username:    cu.Name,
		FirstName:   cu.FirstName,
		LastName:    cu.LastName,
		DisplayName: cu.DisplayName,
		Email:       cu.Email,
		Active:      cu.Active,
	}
	if groups, err := svc.GroupsOf(cu.Name); err == nil {
		for _, g := range groups {
			if g == svc.adminGroup {
				usr.Admin = true
				break
			}
		}
	}
	return usr
}

func (svc *crowdService) Authenticate(username, password string) (identity.User, error) {
	resp, err := svc.send(rest.Post, "/authentication", map[string]string{"username": username}, crowdPassword{Value: password})
	if err != nil {
		return identity.User{}, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return identity.User{}, identity.ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return identity.User{}, identity.ErrAuthFailed
	}

	var cu crowdUser
	if err = json.Unmarshal([]byte(resp.Body), &cu); err != nil {
		return identity.User{}, errors.Wrap(err, "decoding user")
	}
	return svc.user(cu), nil
}

func (svc *crowdService) GetUser(username string) (identity.User, error) {
	cu, err := svc.getUser(map[string]string{"username": username})
	if err != nil {
		return identity.User{}, err
	}
	return svc.user(cu), nil
}

func (svc *crowdService) getUser(params map[string]string) (crowdUser, error) {
	resp, err := svc.send(rest.Get, "/user", params, nil)
	if err != nil {
		return crowdUser{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return crowdUser{}, identity.ErrNotFound
	}

	var cu crowdUser
	if err = json.Unmarshal([]byte(resp.Body), &cu); err != nil {
		return crowdUser{}, errors.Wrap(err, "decoding user")
	}
	return cu, nil
}

func (svc *crowdService) UserExists(username string) (bool, error) {
	_, err := svc.getUser(map[string]string{"username": username})
	if err == identity.ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (svc *crowdService) EmailExists(email string) (bool, error) {
	_, err := svc.getUser(map[string]string{"email": email})
	if err == identity.ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (svc *crowdService) GroupsOf(username string) ([]string, error) {
	resp, err := svc.send(rest.Get, "/user/group/nested", map[string]string{"username": username}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, identity.ErrNotFound
	}

	var cg crowdGroups
	if err = json.Unmarshal([]byte(resp.Body), &cg); err != nil {
		return nil, errors.Wrap(err, "decoding groups")
	}
	names := make([]string, 0, len(cg.Groups))
	for _, g := range cg.Groups {
		names = append(names, g.Name)
	}
	return names, nil
}

func (svc *crowdService) Register(nu identity.NewUser) error {
	body := crowdNewUser{
		crowdUser: crowdUser{
			Name:        nu.Username,
			FirstName:   nu.FirstName,
			LastName:    nu.LastName,
			DisplayName: nu.DisplayName(),
			Email:       nu.Email,
			Active:      true,
		},
		Password: crowdPassword{Value: nu.Password},
	}
	resp, err := svc.send(rest.Post, "/user", nil, body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		svc.logger.Error("user registration rejected", "status", resp.StatusCode, "body", resp.Body)
		return errors.Errorf("registering user: unexpected status %d", resp.StatusCode)
	}
	return nil
}
