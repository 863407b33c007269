package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/cs-students/markis/apps/api/echo"
	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
	"github.com/cs-students/markis/core/engagement"
	"github.com/cs-students/markis/core/identity"
	emailsvc "github.com/cs-students/markis/services/email"
	identitysvc "github.com/cs-students/markis/services/identity"
	inmemdb "github.com/cs-students/markis/storage/database/inmem"
	"github.com/cs-students/markis/storage/filestore"
	testutil "github.com/cs-students/markis/tests"
)

var (
	conf           *core.Config
	catalogRepo    catalog.Repository
	engagementRepo engagement.Repository
	store          *filestore.Store
	idSvc          *identitysvc.MockService

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) *echoapi.Server {
	t.Helper()

	conf = testutil.NewConfig()

	// set up DB & repos
	db := inmemdb.Open()
	catalogRepo = inmemdb.NewCatalogRepository(db)
	engRepo := inmemdb.NewEngagementRepository(db)
	engagementRepo = engRepo
	store = testutil.NewFilestore(t)

	// set up services
	idSvc = identitysvc.NewMockService(conf.Crowd.AdminGroup)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	catalogSvc := catalog.NewService(conf, catalogRepo, store, engRepo, idSvc)
	engagementSvc := engagement.NewService(nil, engagementRepo, catalogRepo, store)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        nopLogger{},
			CatalogSvc:    catalogSvc,
			EngagementSvc: engagementSvc,
			IdentitySvc:   idSvc,
			MailSvc:       mailSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
func (nopLogger) Enable(bool)                  {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest builds a multipart upload of content plus form fields.
func newUploadRequest(t *testing.T, path, token, filename, content string, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	if _, err = fw.Write([]byte(content)); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	for k, v := range fields {
		if err = w.WriteField(k, v); err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
	}
	if err = w.Close(); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, usr identity.User) string {
	t.Helper()

	token, err := echoapi.GenerateToken(conf, echoapi.GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func addUser(t *testing.T, username string, admin bool) identity.User {
	t.Helper()

	usr := identity.User{
		Username:    username,
		FirstName:   "User",
		LastName:    username,
		DisplayName: "User " + username,
		Email:       username + "@test.cd",
		Active:      true,
		Admin:       admin,
	}
	idSvc.AddUser(usr, "s3cretpwd")
	return usr
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
