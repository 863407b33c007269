package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateFaculty(_ context.Context, fac catalog.Faculty, _ ...core.DBExecutor) (catalog.Faculty, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.facultyPK++
	fac.ID = repo.db.facultyPK
	repo.db.faculties[fac.ID] = fac
	return fac, nil
}

func (repo *catalogRepository) QueryFaculties(_ context.Context, _ ...core.DBExecutor) ([]catalog.Faculty, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	facs := make([]catalog.Faculty, 0, len(repo.db.faculties))
	for _, fac := range repo.db.faculties {
		facs = append(facs, fac)
	}
	sort.Slice(facs, func(i, j int) bool { return facs[i].Name < facs[j].Name })
	return facs, nil
}

func (repo *catalogRepository) CreateSubject(_ context.Context, sub catalog.Subject, _ ...core.DBExecutor) (catalog.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if fac, ok := repo.db.faculties[sub.FacultyID]; ok {
		sub.FacultyName = fac.Name
	}
	repo.db.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *catalogRepository) QuerySubjects(_ context.Context, _ ...core.DBExecutor) ([]catalog.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]catalog.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

func (repo *catalogRepository) GetSubject(_ context.Context, id string, _ ...core.DBExecutor) (catalog.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return sub, nil
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (repo *catalogRepository) CreateFile(_ context.Context, rec catalog.FileRecord, _ ...core.DBExecutor) (catalog.FileRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, f := range repo.db.files {
		if f.Hash == rec.Hash {
			return catalog.FileRecord{}, catalog.ErrDuplicateFile
		}
	}
	rec.ID = uuid.New().String()
	repo.db.files[rec.ID] = rec
	return rec, nil
}

func (repo *catalogRepository) GetFileByID(_ context.Context, id string, _ ...core.DBExecutor) (catalog.FileRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.files[id]; ok {
		return rec, nil
	}
	return catalog.FileRecord{}, catalog.ErrFileNotFound
}

func (repo *catalogRepository) GetFileByHash(_ context.Context, hash string, _ ...core.DBExecutor) (catalog.FileRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rec := range repo.db.files {
		if rec.Hash == hash {
			return rec, nil
		}
	}
	return catalog.FileRecord{}, catalog.ErrFileNotFound
}

func (repo *catalogRepository) FilesUnder(_ context.Context, subjectID, prefix string, _ ...core.DBExecutor) ([]catalog.FileRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []catalog.FileRecord
	for _, rec := range repo.db.files {
		if rec.SubjectID != subjectID {
			continue
		}
		if rec.DisplayPath == prefix || strings.HasPrefix(rec.DisplayPath, prefix+"/") {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *catalogRepository) FilesAt(_ context.Context, subjectID, path string, _ ...core.DBExecutor) ([]catalog.FileRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []catalog.FileRecord
	for _, rec := range repo.db.files {
		if rec.SubjectID == subjectID && rec.DisplayPath == path {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	return recs, nil
}

func (repo *catalogRepository) DeleteFile(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.files, id)
	return nil
}
