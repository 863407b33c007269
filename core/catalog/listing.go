package catalog

import (
	"context"
	"path"
	"sort"

	pkgerrors "github.com/pkg/errors"
)

// Files lists the live files filed exactly at folderPath, annotated for
// user and sorted by name.
func (svc *Service) Files(ctx context.Context, user, subjectID, folderPath string) ([]FileInfo, error) {
	recs, err := svc.repo.FilesAt(ctx, subjectID, folderPath)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing files")
	}
	return svc.annotate(ctx, user, recs)
}

// FavoriteFiles lists the user's favorited files across all subjects.
// Favorites whose file is gone or dangling are silently skipped.
func (svc *Service) FavoriteFiles(ctx context.Context, user string) ([]FileInfo, error) {
	ids, err := svc.engagement.FavoriteFileIDs(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing favorites")
	}

	recs := make([]FileRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := svc.repo.GetFileByID(ctx, id)
		if err != nil {
			if pkgerrors.Cause(err) == ErrFileNotFound {
				continue
			}
			return nil, err
		}
		recs = append(recs, rec)
	}
	return svc.annotate(ctx, user, recs)
}

// annotate turns live records into listing entries. The uploader's
// display name comes from the identity service, falling back to the raw
// username when the lookup fails.
func (svc *Service) annotate(ctx context.Context, user string, recs []FileRecord) ([]FileInfo, error) {
	names := make(map[string]string)
	infos := make([]FileInfo, 0, len(recs))
	for _, rec := range recs {
		if !svc.isLive(rec) {
			continue
		}

		size, err := svc.store.Size(rec.Hash)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "sizing content")
		}
		score, err := svc.engagement.FileScore(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		vote, err := svc.engagement.GetUserVote(ctx, user, rec.ID)
		if err != nil {
			return nil, err
		}
		fav, err := svc.engagement.HasFavorite(ctx, user, rec.ID)
		if err != nil {
			return nil, err
		}

		name, ok := names[rec.Uploader]
		if !ok {
			name = svc.uploaderName(rec.Uploader)
			names[rec.Uploader] = name
		}

		infos = append(infos, FileInfo{
			FileRecord:   rec,
			Score:        score,
			UserVote:     vote,
			Favorite:     fav,
			Size:         FormatByteSize(size),
			UploaderName: name,
			DownloadPath: path.Join(svc.conf.Filestore.URLPath, rec.Hash),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (svc *Service) uploaderName(username string) string {
	usr, err := svc.idSvc.GetUser(username)
	if err != nil || usr.DisplayName == "" {
		return username
	}
	return usr.DisplayName
}
