package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cs-students/markis/core/catalog"
	testutil "github.com/cs-students/markis/tests"
)

func TestAPISubjects(t *testing.T) {
	server := setup(t)
	usr := addUser(t, "awa", false)
	token := getToken(t, usr)

	fac := testutil.CreateFaculty(t, catalogRepo, "Polytechnique")
	mat := testutil.CreateSubject(t, catalogRepo, "mat101", "Math I", fac.ID)
	phy := testutil.CreateSubject(t, catalogRepo, "phy102", "Physics I", fac.ID)
	testutil.CreateFile(t, catalogRepo, store, mat.ID, "notes.pdf", "literature", "lecture notes", usr.Username)

	tests := []httpTest{
		{
			name:     "Auth required",
			path:     "/api/subjects",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "List subjects",
			path:     "/api/subjects",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []catalog.Subject{mat, phy}),
		},
		{
			name:     "Unknown subject",
			path:     "/api/subjects/nope",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, errNotFound),
		},
		{
			name:     "Subject detail with root folders",
			path:     "/api/subjects/" + mat.ID,
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, map[string]interface{}{
				"id":           mat.ID,
				"name":         mat.Name,
				"faculty_id":   fac.ID,
				"faculty_name": fac.Name,
				"folders": []catalog.Folder{
					{Name: "exams"},
					{Name: "homework"},
					{Name: "literature", HasContent: true},
					{Name: "misc"},
					{Name: "summaries"},
				},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAPIBrowse(t *testing.T) {
	server := setup(t)
	usr := addUser(t, "awa", false)
	token := getToken(t, usr)

	fac := testutil.CreateFaculty(t, catalogRepo, "Polytechnique")
	mat := testutil.CreateSubject(t, catalogRepo, "mat101", "Math I", fac.ID)
	testutil.CreateFile(t, catalogRepo, store, mat.ID, "notes.pdf", "literature", "lecture notes", usr.Username)
	testutil.CreateFile(t, catalogRepo, store, mat.ID, "exam 2024.pdf", "exams/2024-2025/questions", "exam questions", usr.Username)
	testutil.CreateFile(t, catalogRepo, store, mat.ID, "exam 2023.pdf", "exams/2023-2024/questions", "older exam questions", usr.Username)

	tests := []struct {
		httpTest
		wantFolders []catalog.Folder
		wantFiles   []string
	}{
		{
			httpTest: httpTest{
				name:     "Structured category lists periods newest first",
				path:     "/api/subjects/mat101/folders/exams",
				wantCode: http.StatusOK,
			},
			wantFolders: []catalog.Folder{
				{Name: "2024-2025", HasContent: true},
				{Name: "2023-2024", HasContent: true},
			},
			wantFiles: []string{},
		},
		{
			httpTest: httpTest{
				name:     "Period lists the subtype pair",
				path:     "/api/subjects/mat101/folders/exams/2024-2025",
				wantCode: http.StatusOK,
			},
			wantFolders: []catalog.Folder{
				{Name: "questions", HasContent: true},
				{Name: "answers"},
			},
			wantFiles: []string{},
		},
		{
			httpTest: httpTest{
				name:     "Leaf folder lists files",
				path:     "/api/subjects/mat101/folders/exams/2024-2025/questions",
				wantCode: http.StatusOK,
			},
			wantFolders: []catalog.Folder{},
			wantFiles:   []string{"exam 2024.pdf"},
		},
		{
			httpTest: httpTest{
				name:     "Flat category lists files",
				path:     "/api/subjects/mat101/folders/literature",
				wantCode: http.StatusOK,
			},
			wantFolders: []catalog.Folder{},
			wantFiles:   []string{"notes.pdf"},
		},
		{
			httpTest: httpTest{
				name:     "Empty flat category",
				path:     "/api/subjects/mat101/folders/misc",
				wantCode: http.StatusOK,
			},
			wantFolders: []catalog.Folder{},
			wantFiles:   []string{},
		},
		{
			httpTest: httpTest{
				name:     "Period without content",
				path:     "/api/subjects/mat101/folders/exams/2019-2020",
				wantCode: http.StatusNotFound,
			},
		},
		{
			httpTest: httpTest{
				name:     "Unknown category",
				path:     "/api/subjects/mat101/folders/nope",
				wantCode: http.StatusNotFound,
			},
		},
		{
			httpTest: httpTest{
				name:     "Unknown subject",
				path:     "/api/subjects/nope/folders/literature",
				wantCode: http.StatusNotFound,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt.httpTest, rec)

			if tt.wantCode != http.StatusOK {
				return
			}
			var view catalog.FolderView
			if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
				t.Fatalf("unmarshaling FolderView failed: %v", err)
			}
			if len(view.Folders) != len(tt.wantFolders) {
				t.Fatalf("folders = %v; want %v", view.Folders, tt.wantFolders)
			}
			for i, fld := range tt.wantFolders {
				if view.Folders[i] != fld {
					t.Errorf("folders[%d] = %v; want %v", i, view.Folders[i], fld)
				}
			}
			if len(view.Files) != len(tt.wantFiles) {
				t.Fatalf("got %d files; want %d", len(view.Files), len(tt.wantFiles))
			}
			for i, name := range tt.wantFiles {
				if view.Files[i].Name != name {
					t.Errorf("files[%d].Name = %q; want %q", i, view.Files[i].Name, name)
				}
			}
		})
	}
}

func TestAPIUpload(t *testing.T) {
	server := setup(t)
	usr := addUser(t, "awa", false)
	token := getToken(t, usr)

	fac := testutil.CreateFaculty(t, catalogRepo, "Polytechnique")
	testutil.CreateSubject(t, catalogRepo, "mat101", "Math I", fac.ID)

	year := fmt.Sprint(catalog.AcademicYear(time.Now()))

	tests := []struct {
		httpTest
		filename string
		content  string
		fields   map[string]string
	}{
		{
			httpTest: httpTest{
				name:     "Unknown subject",
				wantCode: http.StatusBadRequest,
				wantData: marshalObj(t, map[string]string{"subject_id": "subject not found"}),
			},
			filename: "exam.pdf",
			content:  "exam questions",
			fields:   map[string]string{"subject_id": "nope", "category": "exams", "year": year, "subtype": "questions"},
		},
		{
			httpTest: httpTest{
				name:     "Unknown category",
				wantCode: http.StatusBadRequest,
				wantData: marshalObj(t, map[string]string{"category": "unknown category"}),
			},
			filename: "exam.pdf",
			content:  "exam questions",
			fields:   map[string]string{"subject_id": "mat101", "category": "nope", "year": year, "subtype": "questions"},
		},
		{
			httpTest: httpTest{
				name:     "Year out of range",
				wantCode: http.StatusBadRequest,
				wantData: marshalObj(t, map[string]string{"year": "invalid year"}),
			},
			filename: "exam.pdf",
			content:  "exam questions",
			fields:   map[string]string{"subject_id": "mat101", "category": "exams", "year": "1999", "subtype": "questions"},
		},
		{
			httpTest: httpTest{
				name:     "Bad subtype",
				wantCode: http.StatusBadRequest,
				wantData: marshalObj(t, map[string]string{"subtype": "must be one of: questions, answers"}),
			},
			filename: "exam.pdf",
			content:  "exam questions",
			fields:   map[string]string{"subject_id": "mat101", "category": "exams", "year": year, "subtype": "nope"},
		},
		{
			httpTest: httpTest{
				name:     "Structured upload",
				wantCode: http.StatusCreated,
			},
			filename: "exam.pdf",
			content:  "exam questions",
			fields:   map[string]string{"subject_id": "mat101", "category": "exams", "year": year, "subtype": "questions"},
		},
		{
			httpTest: httpTest{
				name:     "Duplicate content rejected",
				wantCode: http.StatusBadRequest,
				wantData: marshalObj(t, httpErr{Error: "that file is already uploaded"}),
			},
			filename: "same exam.pdf",
			content:  "exam questions",
			fields:   map[string]string{"subject_id": "mat101", "category": "misc"},
		},
		{
			httpTest: httpTest{
				name:     "Flat upload",
				wantCode: http.StatusCreated,
			},
			filename: "notes.pdf",
			content:  "lecture notes",
			fields:   map[string]string{"subject_id": "mat101", "category": "literature"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, "/api/files", token, tt.filename, tt.content, tt.fields)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt.httpTest, rec)

			if tt.wantCode != http.StatusCreated {
				return
			}
			var rec2 catalog.FileRecord
			if err := json.Unmarshal(rec.Body.Bytes(), &rec2); err != nil {
				t.Fatalf("unmarshaling FileRecord failed: %v", err)
			}
			if len(rec2.Hash) != 40 {
				t.Errorf("Hash = %q", rec2.Hash)
			}
			if !store.Exists(rec2.Hash) {
				t.Error("expected content in the store")
			}
			if rec2.Uploader != usr.Username {
				t.Errorf("Uploader = %q", rec2.Uploader)
			}
			if tt.fields["category"] == "exams" {
				wantPath := "exams/" + year + "-" + fmt.Sprint(catalog.AcademicYear(time.Now())+1) + "/questions"
				if rec2.DisplayPath != wantPath {
					t.Errorf("DisplayPath = %q; want %q", rec2.DisplayPath, wantPath)
				}
			} else if rec2.DisplayPath != tt.fields["category"] {
				t.Errorf("DisplayPath = %q; want %q", rec2.DisplayPath, tt.fields["category"])
			}
		})
	}

	t.Run("File is required", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"file": "file is required"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/api/files", token)
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestAPIDownload(t *testing.T) {
	server := setup(t)
	usr := addUser(t, "awa", false)
	token := getToken(t, usr)

	fac := testutil.CreateFaculty(t, catalogRepo, "Polytechnique")
	mat := testutil.CreateSubject(t, catalogRepo, "mat101", "Math I", fac.ID)
	file := testutil.CreateFile(t, catalogRepo, store, mat.ID, "notes.pdf", "literature", "lecture notes", usr.Username)

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/api/files/"+file.Hash)
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unknown hash", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)}
		req, rec := newAuthRequest(http.MethodGet, "/api/files/"+strings.Repeat("0", 40), token)
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Streams the content", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/files/"+file.Hash, token)
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		if got := rec.Body.String(); got != "lecture notes" {
			t.Errorf("body = %q", got)
		}
		if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="notes.pdf"` {
			t.Errorf("Content-Disposition = %q", got)
		}
	})
}

func TestAPIRemoveFile(t *testing.T) {
	server := setup(t)
	usr := addUser(t, "awa", false)
	admin := addUser(t, "boss", true)

	fac := testutil.CreateFaculty(t, catalogRepo, "Polytechnique")
	mat := testutil.CreateSubject(t, catalogRepo, "mat101", "Math I", fac.ID)
	file := testutil.CreateFile(t, catalogRepo, store, mat.ID, "notes.pdf", "literature", "lecture notes", usr.Username)

	tests := []httpTest{
		{
			name:     "Auth required",
			path:     "/api/files/" + file.ID,
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "Admin required",
			path:     "/api/files/" + file.ID,
			token:    getToken(t, usr),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errForbidden),
		},
		{
			name:     "Unknown file",
			path:     "/api/files/nope",
			token:    getToken(t, admin),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, errNotFound),
		},
		{
			name:     "Removed by admin",
			path:     "/api/files/" + file.ID,
			token:    getToken(t, admin),
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusNoContent && store.Exists(file.Hash) {
				t.Error("expected content to be deleted from the store")
			}
		})
	}
}

func TestAPIYears(t *testing.T) {
	server := setup(t)
	token := getToken(t, addUser(t, "awa", false))

	tests := []httpTest{
		{
			name:     "Auth required",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "Year periods",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, catalog.YearPeriods(conf.Catalog.InitialYear, time.Now())),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/years", tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
