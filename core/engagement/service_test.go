package engagement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-students/markis/core/catalog"
	"github.com/cs-students/markis/core/engagement"
	inmemdb "github.com/cs-students/markis/storage/database/inmem"
	"github.com/cs-students/markis/storage/filestore"
	testutil "github.com/cs-students/markis/tests"
)

type testEnv struct {
	svc   *engagement.Service
	repo  engagement.Repository
	store *filestore.Store
	rec   catalog.FileRecord
}

func setup(t *testing.T) testEnv {
	t.Helper()

	db := inmemdb.Open()
	catalogRepo := inmemdb.NewCatalogRepository(db)
	repo := inmemdb.NewEngagementRepository(db)
	store := testutil.NewFilestore(t)

	fac := testutil.CreateFaculty(t, catalogRepo, "Science")
	sub := testutil.CreateSubject(t, catalogRepo, "cs101", "Programming", fac.ID)
	rec := testutil.CreateFile(t, catalogRepo, store, sub.ID, "notes.txt", "misc", "notes", "awe")

	svc := engagement.NewService(nil, repo, catalogRepo, store)
	return testEnv{svc: svc, repo: repo, store: store, rec: rec}
}

func Test_Service_SetVote(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// two voters
	score, err := env.svc.SetVote(ctx, "awe", env.rec.ID, engagement.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	score, err = env.svc.SetVote(ctx, "bob", env.rec.ID, engagement.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	// repeating the held state is rejected and changes nothing
	_, err = env.svc.SetVote(ctx, "awe", env.rec.ID, engagement.VoteUp)
	assert.Equal(t, engagement.ErrNoOpVote, err)
	score, err = env.svc.Score(ctx, env.rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	// flip
	score, err = env.svc.SetVote(ctx, "awe", env.rec.ID, engagement.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	// retract
	score, err = env.svc.SetVote(ctx, "awe", env.rec.ID, engagement.VoteNone)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	// retracting again is a no-op request
	_, err = env.svc.SetVote(ctx, "awe", env.rec.ID, engagement.VoteNone)
	assert.Equal(t, engagement.ErrNoOpVote, err)

	// out of range
	_, err = env.svc.SetVote(ctx, "awe", env.rec.ID, 5)
	assert.Equal(t, engagement.ErrInvalidVote, err)
}

func Test_Service_SetVote_missingFile(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.svc.SetVote(ctx, "awe", "nope", engagement.VoteUp)
	assert.Equal(t, catalog.ErrFileNotFound, err)

	// dangling record: content is gone
	require.NoError(t, env.store.Delete(env.rec.Hash))
	_, err = env.svc.SetVote(ctx, "awe", env.rec.ID, engagement.VoteUp)
	assert.Equal(t, engagement.ErrMissingContent, err)
}

func Test_Service_favorites(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	require.NoError(t, env.svc.AddFavorite(ctx, "awe", env.rec.ID))
	// favoriting twice changes nothing
	require.NoError(t, env.svc.AddFavorite(ctx, "awe", env.rec.ID))

	ids, err := env.repo.FavoriteFileIDs(ctx, "awe")
	require.NoError(t, err)
	assert.Equal(t, []string{env.rec.ID}, ids)

	require.NoError(t, env.svc.RemoveFavorite(ctx, "awe", env.rec.ID))
	// removing an absent favorite changes nothing
	require.NoError(t, env.svc.RemoveFavorite(ctx, "awe", env.rec.ID))

	ids, err = env.repo.FavoriteFileIDs(ctx, "awe")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// unknown file
	assert.Equal(t, catalog.ErrFileNotFound, env.svc.AddFavorite(ctx, "awe", "nope"))
}
