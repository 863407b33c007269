package testutil

import (
	"context"
	"io/ioutil"
	"net/mail"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
	"github.com/cs-students/markis/storage/filestore"
)

// NewConfig returns the configuration tests run with.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:          "Markis",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:8080",
		DefaultFromEmail: mail.Address{Name: "Markis", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			Host:                      "localhost",
			Addr:                      ":0",
			ShutdownTimeout:           5 * time.Second,
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Filestore: core.FilestoreConfig{
			URLPath:       "/api/files",
			MaxUploadSize: 32 * 1024 * 1024,
		},
		Catalog: core.CatalogConfig{
			Categories:  []string{"exams", "homework", "literature", "misc", "summaries"},
			InitialYear: 2010,
		},
		Crowd: core.CrowdConfig{
			AdminGroup: "Admin",
			Timeout:    time.Second,
		},
	}
}

// NewFilestore returns a blob store rooted in a temp dir, cleaned up with
// the test.
func NewFilestore(t *testing.T) *filestore.Store {
	t.Helper()

	dir, err := ioutil.TempDir("", "markis-filestore")
	if err != nil {
		t.Fatalf("NewFilestore() failed: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	store, err := filestore.New(dir)
	if err != nil {
		t.Fatalf("NewFilestore() failed: %v", err)
	}
	return store
}

func CreateFaculty(t *testing.T, repo catalog.Repository, name string) catalog.Faculty {
	t.Helper()

	fac, err := repo.CreateFaculty(context.Background(), catalog.Faculty{Name: name})
	if err != nil {
		t.Fatalf("CreateFaculty() failed: %v", err)
	}
	return fac
}

func CreateSubject(t *testing.T, repo catalog.Repository, id, name string, facultyID int) catalog.Subject {
	t.Helper()

	sub, err := repo.CreateSubject(context.Background(), catalog.Subject{ID: id, Name: name, FacultyID: facultyID})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

// CreateFile stores content and catalogs a record for it at displayPath.
func CreateFile(
	t *testing.T,
	repo catalog.Repository,
	store *filestore.Store,
	subjectID, name, displayPath, content, uploader string,
) catalog.FileRecord {
	t.Helper()

	hash, err := store.Save(strings.NewReader(content))
	if err != nil {
		t.Fatalf("CreateFile() failed: %v", err)
	}
	rec := catalog.FileRecord{
		Hash:        hash,
		Name:        name,
		DisplayPath: displayPath,
		SubjectID:   subjectID,
		ContentType: "application/octet-stream",
		UploadedAt:  time.Now().UTC(),
		Uploader:    uploader,
	}
	rec, err = repo.CreateFile(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateFile() failed: %v", err)
	}
	return rec
}
