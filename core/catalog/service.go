package catalog

import (
	"context"
	"errors"
	"io"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/identity"
)

var (
	// errors
	ErrSubjectNotFound = errors.New("subject not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrNoFolder        = errors.New("no such folder")
	ErrDuplicateFile   = errors.New("that file is already uploaded")
)

type (
	Repository interface {
		CreateFaculty(ctx context.Context, fac Faculty, exec ...core.DBExecutor) (Faculty, error)
		QueryFaculties(ctx context.Context, exec ...core.DBExecutor) ([]Faculty, error)
		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		// QuerySubjects returns all subjects joined with their faculty name.
		QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]Subject, error)
		GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)

		CreateFile(ctx context.Context, rec FileRecord, exec ...core.DBExecutor) (FileRecord, error)
		GetFileByID(ctx context.Context, id string, exec ...core.DBExecutor) (FileRecord, error)
		// GetFileByHash looks the hash up across all subjects; duplicate
		// detection is global.
		GetFileByHash(ctx context.Context, hash string, exec ...core.DBExecutor) (FileRecord, error)
		// FilesUnder returns all records of a subject whose display path
		// starts with the given prefix.
		FilesUnder(ctx context.Context, subjectID, prefix string, exec ...core.DBExecutor) ([]FileRecord, error)
		// FilesAt returns all records of a subject filed exactly at path.
		FilesAt(ctx context.Context, subjectID, path string, exec ...core.DBExecutor) ([]FileRecord, error)
		DeleteFile(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	// BlobStore is the content-addressed store backing the catalog.
	BlobStore interface {
		Save(r io.Reader) (string, error)
		Exists(hash string) bool
		Size(hash string) (int64, error)
		Open(hash string) (io.ReadCloser, error)
		Delete(hash string) error
	}

	// Engagement exposes the vote/favorite ledger to listings and to the
	// file-removal cascade.
	Engagement interface {
		FileScore(ctx context.Context, fileID string, exec ...core.DBExecutor) (int, error)
		GetUserVote(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (int, error)
		HasFavorite(ctx context.Context, username, fileID string, exec ...core.DBExecutor) (bool, error)
		FavoriteFileIDs(ctx context.Context, username string, exec ...core.DBExecutor) ([]string, error)
		DeleteFileEngagement(ctx context.Context, fileID string, exec ...core.DBExecutor) error
	}

	Service struct {
		conf       *core.Config
		repo       Repository
		store      BlobStore
		engagement Engagement
		idSvc      identity.Service
	}
)

func NewService(conf *core.Config, repo Repository, store BlobStore, engagement Engagement, idSvc identity.Service) *Service {
	return &Service{
		conf:       conf,
		repo:       repo,
		store:      store,
		engagement: engagement,
		idSvc:      idSvc,
	}
}

func (svc *Service) Faculties(ctx context.Context) ([]Faculty, error) {
	return svc.repo.QueryFaculties(ctx)
}

func (svc *Service) CreateFaculty(ctx context.Context, fac Faculty) (Faculty, error) {
	return svc.repo.CreateFaculty(ctx, fac)
}

func (svc *Service) CreateSubject(ctx context.Context, sub Subject) (Subject, error) {
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) Subjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

// YearPeriods lists the academic-year choices offered on upload.
func (svc *Service) YearPeriods() []YearPeriod {
	return YearPeriods(svc.conf.Catalog.InitialYear, time.Now())
}

// checkNewFile validates the parts of a NewFile that need catalog state:
// the subject must exist and structured categories need a valid
// year-period and subtype.
func (svc *Service) checkNewFile(ctx context.Context, nf *NewFile) error {
	if _, err := svc.repo.GetSubject(ctx, nf.SubjectID); err != nil {
		if pkgerrors.Cause(err) == ErrSubjectNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "subject_id", Error: ErrSubjectNotFound.Error()})
		}
		return err
	}

	if _, err := ParseFolderPath(svc.conf.Catalog.Categories, nf.Category); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "category", Error: "unknown category"})
	}

	if IsStructured(nf.Category) {
		if nf.Year < svc.conf.Catalog.InitialYear || nf.Year > AcademicYear(time.Now()) {
			return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "invalid year"})
		}
		if !IsSubtype(nf.Subtype) {
			return core.NewValidationError(nil, core.FieldError{Field: "subtype", Error: "must be one of: questions, answers"})
		}
	}
	return nil
}

// Upload stores the content and catalogs it. The blob is published first;
// if cataloging fails the blob is left behind as a harmless orphan.
// A hash that is already cataloged rejects the upload as a duplicate,
// whatever the subject.
func (svc *Service) Upload(ctx context.Context, nf NewFile, content io.Reader) (FileRecord, error) {
	hash, err := svc.store.Save(content)
	if err != nil {
		return FileRecord{}, pkgerrors.Wrap(err, "storing content")
	}

	if _, err = svc.repo.GetFileByHash(ctx, hash); err == nil {
		return FileRecord{}, ErrDuplicateFile
	} else if pkgerrors.Cause(err) != ErrFileNotFound {
		return FileRecord{}, pkgerrors.Wrap(err, "checking for duplicate")
	}

	rec := FileRecord{
		Hash:        hash,
		Name:        nf.Name,
		DisplayPath: nf.DisplayPath(),
		SubjectID:   nf.SubjectID,
		ContentType: nf.ContentType,
		UploadedAt:  time.Now().UTC(),
		Uploader:    nf.Uploader,
	}
	rec, err = svc.repo.CreateFile(ctx, rec)
	if err != nil {
		if pkgerrors.Cause(err) == ErrDuplicateFile { // lost an upload race
			return FileRecord{}, ErrDuplicateFile
		}
		return FileRecord{}, pkgerrors.Wrap(err, "cataloging file")
	}
	return rec, nil
}

// Download resolves a content hash to its record and an open reader.
// A record whose blob is gone counts as not found.
func (svc *Service) Download(ctx context.Context, hash string) (FileRecord, io.ReadCloser, error) {
	rec, err := svc.repo.GetFileByHash(ctx, hash)
	if err != nil {
		return FileRecord{}, nil, err
	}
	if !svc.store.Exists(rec.Hash) {
		return FileRecord{}, nil, ErrFileNotFound
	}
	rc, err := svc.store.Open(rec.Hash)
	if err != nil {
		return FileRecord{}, nil, pkgerrors.Wrap(err, "opening content")
	}
	return rec, rc, nil
}

// RemoveFile deletes the record, its content and all engagement rows.
func (svc *Service) RemoveFile(ctx context.Context, id string) error {
	rec, err := svc.repo.GetFileByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.store.Delete(rec.Hash); err != nil && svc.store.Exists(rec.Hash) {
		return pkgerrors.Wrap(err, "deleting content")
	}
	if err = svc.repo.DeleteFile(ctx, id); err != nil {
		return pkgerrors.Wrap(err, "deleting file record")
	}
	if err = svc.engagement.DeleteFileEngagement(ctx, id); err != nil {
		return pkgerrors.Wrap(err, "deleting engagement records")
	}
	return nil
}

// isLive reports whether a record's content is confirmed present.
func (svc *Service) isLive(rec FileRecord) bool {
	return svc.store.Exists(rec.Hash)
}
