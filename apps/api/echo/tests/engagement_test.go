package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/cs-students/markis/apps/api/echo"
	"github.com/cs-students/markis/core/catalog"
	testutil "github.com/cs-students/markis/tests"
)

func intPtr(v int) *int { return &v }

func TestAPIVote(t *testing.T) {
	server := setup(t)
	awa := addUser(t, "awa", false)
	dodo := addUser(t, "dodo", false)

	fac := testutil.CreateFaculty(t, catalogRepo, "Polytechnique")
	mat := testutil.CreateSubject(t, catalogRepo, "mat101", "Math I", fac.ID)
	file := testutil.CreateFile(t, catalogRepo, store, mat.ID, "notes.pdf", "literature", "lecture notes", awa.Username)

	votePath := "/api/files/" + file.ID + "/vote"

	tests := []httpTest{
		{
			name:     "Auth required",
			path:     votePath,
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "Vote is required",
			path:     votePath,
			token:    getToken(t, awa),
			body:     marshalObj(t, map[string]string{}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"vote": "vote is required"}),
		},
		{
			name:     "Invalid value",
			path:     votePath,
			token:    getToken(t, awa),
			body:     marshalObj(t, echoapi.VoteRequest{Vote: intPtr(5)}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "vote must be one of -1, 0, 1"}),
		},
		{
			name:     "Unknown file",
			path:     "/api/files/nope/vote",
			token:    getToken(t, awa),
			body:     marshalObj(t, echoapi.VoteRequest{Vote: intPtr(1)}),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, errNotFound),
		},
		{
			name:     "First upvote",
			path:     votePath,
			token:    getToken(t, awa),
			body:     marshalObj(t, echoapi.VoteRequest{Vote: intPtr(1)}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.VoteResponse{Score: 1}),
		},
		{
			name:     "Second voter",
			path:     votePath,
			token:    getToken(t, dodo),
			body:     marshalObj(t, echoapi.VoteRequest{Vote: intPtr(1)}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.VoteResponse{Score: 2}),
		},
		{
			name:     "Same vote again",
			path:     votePath,
			token:    getToken(t, awa),
			body:     marshalObj(t, echoapi.VoteRequest{Vote: intPtr(1)}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "vote is already in the requested state"}),
		},
		{
			name:     "Flip to downvote",
			path:     votePath,
			token:    getToken(t, awa),
			body:     marshalObj(t, echoapi.VoteRequest{Vote: intPtr(-1)}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.VoteResponse{Score: 0}),
		},
		{
			name:     "Retract",
			path:     votePath,
			token:    getToken(t, awa),
			body:     marshalObj(t, echoapi.VoteRequest{Vote: intPtr(0)}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.VoteResponse{Score: 1}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAPIFavorites(t *testing.T) {
	server := setup(t)
	awa := addUser(t, "awa", false)
	token := getToken(t, awa)

	fac := testutil.CreateFaculty(t, catalogRepo, "Polytechnique")
	mat := testutil.CreateSubject(t, catalogRepo, "mat101", "Math I", fac.ID)
	file := testutil.CreateFile(t, catalogRepo, store, mat.ID, "notes.pdf", "literature", "lecture notes", awa.Username)

	favPath := "/api/files/" + file.ID + "/favorite"

	listFavorites := func(t *testing.T) []catalog.FileInfo {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/api/favorites", token)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("listing favorites: code = %v", rec.Code)
		}
		var files []catalog.FileInfo
		if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
			t.Fatalf("unmarshaling favorites failed: %v", err)
		}
		return files
	}

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPut, favPath)
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unknown file", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)}
		req, rec := newAuthRequest(http.MethodPut, "/api/files/nope/favorite", token)
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Empty at first", func(t *testing.T) {
		if files := listFavorites(t); len(files) != 0 {
			t.Errorf("favorites = %v; want none", files)
		}
	})

	t.Run("Add favorite", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, favPath, token)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}

		files := listFavorites(t)
		if len(files) != 1 || files[0].ID != file.ID {
			t.Fatalf("favorites = %v; want %q", files, file.ID)
		}
		if !files[0].Favorite {
			t.Error("expected the listing to flag the favorite")
		}
	})

	t.Run("Adding twice is idempotent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, favPath, token)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
		if files := listFavorites(t); len(files) != 1 {
			t.Errorf("got %d favorites; want 1", len(files))
		}
	})

	t.Run("Remove favorite", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, favPath, token)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
		if files := listFavorites(t); len(files) != 0 {
			t.Errorf("favorites = %v; want none", files)
		}
	})

	t.Run("Removing twice is idempotent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, favPath, token)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}
