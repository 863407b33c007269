package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
	"github.com/cs-students/markis/core/engagement"
)

type engagementRepository struct {
	db *sqlx.DB
}

var (
	_ engagement.Repository = (*engagementRepository)(nil) // interface compliance check
	_ catalog.Engagement    = (*engagementRepository)(nil)
)

func NewEngagementRepository(db *sqlx.DB) *engagementRepository {
	return &engagementRepository{db: db}
}

func (repo engagementRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

func (repo engagementRepository) querier(svcExec []core.DBExecutor) sqlx.QueryerContext {
	if len(svcExec) > 0 {
		if q, ok := svcExec[0].(sqlx.QueryerContext); ok {
			return q
		}
	}
	return repo.db
}

func (repo engagementRepository) LockUserVote(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (int, error) {
	var value int
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT value FROM vote WHERE username = $1 AND file_id = $2 FOR UPDATE`, username, fileID).
		Scan(&value)
	if err == sql.ErrNoRows {
		return engagement.VoteNone, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "locking vote")
	}
	return value, nil
}

func (repo engagementRepository) CreateVote(ctx context.Context, v engagement.Vote, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).
		ExecContext(ctx, `INSERT INTO vote (username, file_id, value) VALUES ($1, $2, $3)`, v.Username, v.FileID, v.Value)
	return errors.Wrap(err, "inserting vote")
}

func (repo engagementRepository) UpdateVote(ctx context.Context, v engagement.Vote, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).
		ExecContext(ctx, `UPDATE vote SET value = $3 WHERE username = $1 AND file_id = $2`, v.Username, v.FileID, v.Value)
	return errors.Wrap(err, "updating vote")
}

func (repo engagementRepository) DeleteVote(ctx context.Context, username, fileID string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).
		ExecContext(ctx, `DELETE FROM vote WHERE username = $1 AND file_id = $2`, username, fileID)
	return errors.Wrap(err, "deleting vote")
}

func (repo engagementRepository) FileScore(ctx context.Context, fileID string, exec ...core.DBExecutor) (int, error) {
	var sum null.Int64 // NULL when the file has no votes
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT SUM(value) FROM vote WHERE file_id = $1`, fileID).
		Scan(&sum)
	if err != nil {
		return 0, errors.Wrap(err, "summing votes")
	}
	return int(sum.Int64), nil
}

func (repo engagementRepository) GetUserVote(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (int, error) {
	var value int
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT value FROM vote WHERE username = $1 AND file_id = $2`, username, fileID).
		Scan(&value)
	if err == sql.ErrNoRows {
		return engagement.VoteNone, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "getting vote")
	}
	return value, nil
}

func (repo engagementRepository) AddFavorite(ctx context.Context, f engagement.Favorite, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).
		ExecContext(ctx, `INSERT INTO favorite (username, file_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, f.Username, f.FileID)
	return errors.Wrap(err, "inserting favorite")
}

func (repo engagementRepository) RemoveFavorite(ctx context.Context, username, fileID string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).
		ExecContext(ctx, `DELETE FROM favorite WHERE username = $1 AND file_id = $2`, username, fileID)
	return errors.Wrap(err, "deleting favorite")
}

func (repo engagementRepository) HasFavorite(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (bool, error) {
	var found bool
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT true FROM favorite WHERE username = $1 AND file_id = $2`, username, fileID).
		Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, "checking favorite")
	}
	return found, nil
}

func (repo engagementRepository) FavoriteFileIDs(ctx context.Context, username string, exec ...core.DBExecutor) ([]string, error) {
	var ids []string
	err := sqlx.SelectContext(ctx, repo.querier(exec), &ids,
		`SELECT file_id FROM favorite WHERE username = $1`, username)
	if err != nil {
		return nil, errors.Wrap(err, "querying favorites")
	}
	return ids, nil
}

func (repo engagementRepository) DeleteFileEngagement(ctx context.Context, fileID string, exec ...core.DBExecutor) error {
	ex := repo.getExec(exec)
	if _, err := ex.ExecContext(ctx, `DELETE FROM vote WHERE file_id = $1`, fileID); err != nil {
		return errors.Wrap(err, "deleting votes")
	}
	if _, err := ex.ExecContext(ctx, `DELETE FROM favorite WHERE file_id = $1`, fileID); err != nil {
		return errors.Wrap(err, "deleting favorites")
	}
	return nil
}
