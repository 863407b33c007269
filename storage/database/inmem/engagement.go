package inmemdb

import (
	"context"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
	"github.com/cs-students/markis/core/engagement"
)

type engagementRepository struct {
	db *DB
}

var (
	_ engagement.Repository = (*engagementRepository)(nil) // interface compliance check
	_ catalog.Engagement    = (*engagementRepository)(nil)
)

func NewEngagementRepository(db *DB) *engagementRepository {
	return &engagementRepository{db: db}
}

func (repo *engagementRepository) LockUserVote(_ context.Context, username, fileID string, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.votes[favKey{username, fileID}], nil
}

func (repo *engagementRepository) CreateVote(_ context.Context, v engagement.Vote, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.votes[favKey{v.Username, v.FileID}] = v.Value
	return nil
}

func (repo *engagementRepository) UpdateVote(ctx context.Context, v engagement.Vote, exec ...core.DBExecutor) error {
	return repo.CreateVote(ctx, v, exec...)
}

func (repo *engagementRepository) DeleteVote(_ context.Context, username, fileID string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.votes, favKey{username, fileID})
	return nil
}

func (repo *engagementRepository) FileScore(_ context.Context, fileID string, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var score int
	for key, value := range repo.db.votes {
		if key.fileID == fileID {
			score += value
		}
	}
	return score, nil
}

func (repo *engagementRepository) GetUserVote(_ context.Context, username, fileID string, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.votes[favKey{username, fileID}], nil
}

func (repo *engagementRepository) AddFavorite(_ context.Context, f engagement.Favorite, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.favorites[favKey{f.Username, f.FileID}] = struct{}{}
	return nil
}

func (repo *engagementRepository) RemoveFavorite(_ context.Context, username, fileID string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.favorites, favKey{username, fileID})
	return nil
}

func (repo *engagementRepository) HasFavorite(_ context.Context, username, fileID string, _ ...core.DBExecutor) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	_, ok := repo.db.favorites[favKey{username, fileID}]
	return ok, nil
}

func (repo *engagementRepository) FavoriteFileIDs(_ context.Context, username string, _ ...core.DBExecutor) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var ids []string
	for key := range repo.db.favorites {
		if key.username == username {
			ids = append(ids, key.fileID)
		}
	}
	return ids, nil
}

func (repo *engagementRepository) DeleteFileEngagement(_ context.Context, fileID string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for key := range repo.db.votes {
		if key.fileID == fileID {
			delete(repo.db.votes, key)
		}
	}
	for key := range repo.db.favorites {
		if key.fileID == fileID {
			delete(repo.db.favorites, key)
		}
	}
	return nil
}
