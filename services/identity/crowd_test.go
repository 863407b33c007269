package identitysvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/identity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
func (nopLogger) Enable(bool)                  {}

func newTestCrowd(t *testing.T) (*crowdService, *http.ServeMux) {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	conf := &core.Config{
		Crowd: core.CrowdConfig{
			URL:         server.URL,
			AppName:     "markis",
			AppPassword: "s3cret",
			AdminGroup:  "Admin",
			Timeout:     time.Second,
		},
	}
	return NewCrowdService(conf, nopLogger{}), mux
}

func writeUser(w http.ResponseWriter, username string) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"name":         username,
		"first-name":   "Awe",
		"last-name":    "Some",
		"display-name": "Awe Some",
		"email":        username + "@test.cd",
		"active":       true,
	})
}

func writeGroups(w http.ResponseWriter, names ...string) {
	groups := make([]map[string]string, 0, len(names))
	for _, n := range names {
		groups = append(groups, map[string]string{"name": n})
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"groups": groups})
}

func Test_crowdService_Authenticate(t *testing.T) {
	svc, mux := newTestCrowd(t)

	mux.HandleFunc("/rest/usermanagement/latest/authentication", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "markis", user)
		assert.Equal(t, "s3cret", pass)

		var body struct {
			Value string `json:"value"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch {
		case r.URL.Query().Get("username") != "awe":
			w.WriteHeader(http.StatusNotFound)
		case body.Value != "goodpwd":
			w.WriteHeader(http.StatusBadRequest)
		default:
			writeUser(w, "awe")
		}
	})
	mux.HandleFunc("/rest/usermanagement/latest/user/group/nested", func(w http.ResponseWriter, r *http.Request) {
		writeGroups(w, "Students", "Admin")
	})

	usr, err := svc.Authenticate("awe", "goodpwd")
	require.NoError(t, err)
	assert.Equal(t, "awe", usr.Username)
	assert.Equal(t, "Awe Some", usr.DisplayName)
	assert.True(t, usr.Active)
	assert.True(t, usr.Admin)

	_, err = svc.Authenticate("awe", "badpwd")
	assert.Equal(t, identity.ErrAuthFailed, err)

	_, err = svc.Authenticate("nope", "goodpwd")
	assert.Equal(t, identity.ErrNotFound, err)
}

func Test_crowdService_GetUser(t *testing.T) {
	svc, mux := newTestCrowd(t)

	mux.HandleFunc("/rest/usermanagement/latest/user", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") == "awe" || r.URL.Query().Get("email") == "awe@test.cd" {
			writeUser(w, "awe")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/rest/usermanagement/latest/user/group/nested", func(w http.ResponseWriter, r *http.Request) {
		writeGroups(w, "Students")
	})

	usr, err := svc.GetUser("awe")
	require.NoError(t, err)
	assert.Equal(t, "awe@test.cd", usr.Email)
	assert.False(t, usr.Admin)

	_, err = svc.GetUser("nope")
	assert.Equal(t, identity.ErrNotFound, err)

	exists, err := svc.UserExists("awe")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.EmailExists("nope@test.cd")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_crowdService_Register(t *testing.T) {
	svc, mux := newTestCrowd(t)

	var created crowdNewUser
	mux.HandleFunc("/rest/usermanagement/latest/user", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
	})

	nu := identity.NewUser{
		Username:  "awe",
		FirstName: "Awe",
		LastName:  "Some",
		Email:     "awe@test.cd",
		Password:  "s3cretpwd",
	}
	require.NoError(t, svc.Register(nu))
	assert.Equal(t, "awe", created.Name)
	assert.Equal(t, "Awe Some", created.DisplayName)
	assert.Equal(t, "s3cretpwd", created.Password.Value)
	assert.True(t, created.Active)
}

func Test_crowdService_unavailable(t *testing.T) {
	conf := &core.Config{
		Crowd: core.CrowdConfig{URL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond},
	}
	svc := NewCrowdService(conf, nopLogger{})

	_, err := svc.Authenticate("awe", "pwd")
	assert.Equal(t, identity.ErrUnavailable, err)
}
