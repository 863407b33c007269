package engagement

import (
	"context"
	"database/sql"

	pkgerrors "github.com/pkg/errors"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
)

type (
	Repository interface {
		// LockUserVote reads the user's current vote on a file, holding a
		// row lock for the rest of the transaction when exec is one.
		// VoteNone when the user has not voted.
		LockUserVote(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (int, error)
		CreateVote(ctx context.Context, v Vote, exec ...core.DBExecutor) error
		UpdateVote(ctx context.Context, v Vote, exec ...core.DBExecutor) error
		DeleteVote(ctx context.Context, username, fileID string, exec ...core.DBExecutor) error

		FileScore(ctx context.Context, fileID string, exec ...core.DBExecutor) (int, error)
		GetUserVote(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (int, error)

		// AddFavorite is a no-op when the favorite already exists.
		AddFavorite(ctx context.Context, f Favorite, exec ...core.DBExecutor) error
		// RemoveFavorite is a no-op when the favorite does not exist.
		RemoveFavorite(ctx context.Context, username, fileID string, exec ...core.DBExecutor) error
		HasFavorite(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (bool, error)
		FavoriteFileIDs(ctx context.Context, username string, exec ...core.DBExecutor) ([]string, error)

		DeleteFileEngagement(ctx context.Context, fileID string, exec ...core.DBExecutor) error
	}

	// FileGetter resolves file IDs to catalog records.
	FileGetter interface {
		GetFileByID(ctx context.Context, id string, exec ...core.DBExecutor) (catalog.FileRecord, error)
	}

	// BlobChecker reports whether a content hash still resolves to bytes.
	BlobChecker interface {
		Exists(hash string) bool
	}

	// Service applies votes and favorites. db may be nil when the backing
	// repository is not transactional; the repository must then serialize
	// its own writes.
	Service struct {
		db    core.DB
		repo  Repository
		files FileGetter
		store BlobChecker
	}
)

func NewService(db core.DB, repo Repository, files FileGetter, store BlobChecker) *Service {
	return &Service{db: db, repo: repo, files: files, store: store}
}

// SetVote moves the user's vote on a file to value and returns the file's
// new score. Requesting the state already held fails with ErrNoOpVote;
// votes on dangling files fail with ErrMissingContent.
func (svc *Service) SetVote(ctx context.Context, username, fileID string, value int) (int, error) {
	if err := svc.checkLive(ctx, fileID); err != nil {
		return 0, err
	}

	if svc.db == nil {
		return svc.setVote(ctx, username, fileID, value)
	}

	tx, err := svc.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "beginning transaction")
	}
	score, err := svc.setVote(ctx, username, fileID, value, tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, pkgerrors.Wrap(err, "committing vote")
	}
	return score, nil
}

func (svc *Service) setVote(ctx context.Context, username, fileID string, value int, exec ...core.DBExecutor) (int, error) {
	current, err := svc.repo.LockUserVote(ctx, username, fileID, exec...)
	if err != nil {
		return 0, err
	}

	action, err := applyVote(current, value)
	if err != nil {
		return 0, err
	}
	switch action {
	case voteCreate:
		err = svc.repo.CreateVote(ctx, Vote{Username: username, FileID: fileID, Value: value}, exec...)
	case voteUpdate:
		err = svc.repo.UpdateVote(ctx, Vote{Username: username, FileID: fileID, Value: value}, exec...)
	case voteDelete:
		err = svc.repo.DeleteVote(ctx, username, fileID, exec...)
	}
	if err != nil {
		return 0, err
	}
	return svc.repo.FileScore(ctx, fileID, exec...)
}

// AddFavorite marks the file on the user's favorites page; favoriting an
// already favorited file changes nothing.
func (svc *Service) AddFavorite(ctx context.Context, username, fileID string) error {
	if err := svc.checkLive(ctx, fileID); err != nil {
		return err
	}
	return svc.repo.AddFavorite(ctx, Favorite{Username: username, FileID: fileID})
}

// RemoveFavorite unmarks the file; removing an absent favorite changes
// nothing. The file does not have to be live anymore.
func (svc *Service) RemoveFavorite(ctx context.Context, username, fileID string) error {
	if _, err := svc.files.GetFileByID(ctx, fileID); err != nil {
		return err
	}
	return svc.repo.RemoveFavorite(ctx, username, fileID)
}

func (svc *Service) Score(ctx context.Context, fileID string) (int, error) {
	return svc.repo.FileScore(ctx, fileID)
}

func (svc *Service) checkLive(ctx context.Context, fileID string) error {
	rec, err := svc.files.GetFileByID(ctx, fileID)
	if err != nil {
		return err
	}
	if !svc.store.Exists(rec.Hash) {
		return ErrMissingContent
	}
	return nil
}
