package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
)

// pq unique_violation
const pqUniqueViolation = "23505"

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

// querier upgrades an exec override to sqlx when it can; list queries
// outside a transaction always go through repo.db.
func (repo catalogRepository) querier(svcExec []core.DBExecutor) sqlx.QueryerContext {
	if len(svcExec) > 0 {
		if q, ok := svcExec[0].(sqlx.QueryerContext); ok {
			return q
		}
	}
	return repo.db
}

type subjectRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	FacultyID   int    `db:"faculty_id"`
	FacultyName string `db:"faculty_name"`
}

func (r subjectRow) subject() catalog.Subject {
	return catalog.Subject{ID: r.ID, Name: r.Name, FacultyID: r.FacultyID, FacultyName: r.FacultyName}
}

type fileRow struct {
	ID          string    `db:"id"`
	Hash        string    `db:"hash"`
	Name        string    `db:"name"`
	DisplayPath string    `db:"display_path"`
	SubjectID   string    `db:"subject_id"`
	ContentType string    `db:"content_type"`
	UploadedAt  time.Time `db:"uploaded_at"`
	Uploader    string    `db:"uploader"`
}

func (r fileRow) record() catalog.FileRecord {
	return catalog.FileRecord{
		ID:          r.ID,
		Hash:        r.Hash,
		Name:        r.Name,
		DisplayPath: r.DisplayPath,
		SubjectID:   r.SubjectID,
		ContentType: r.ContentType,
		UploadedAt:  r.UploadedAt.UTC(),
		Uploader:    r.Uploader,
	}
}

func fileRecords(rows []fileRow) []catalog.FileRecord {
	recs := make([]catalog.FileRecord, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.record())
	}
	return recs
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == pqUniqueViolation
}

func (repo catalogRepository) CreateFaculty(ctx context.Context, fac catalog.Faculty, exec ...core.DBExecutor) (catalog.Faculty, error) {
	err := repo.getExec(exec).
		QueryRowContext(ctx, `INSERT INTO faculty (name) VALUES ($1) RETURNING id`, fac.Name).
		Scan(&fac.ID)
	if err != nil {
		return catalog.Faculty{}, errors.Wrap(err, "inserting faculty")
	}
	return fac, nil
}

func (repo catalogRepository) QueryFaculties(ctx context.Context, exec ...core.DBExecutor) ([]catalog.Faculty, error) {
	var facs []catalog.Faculty
	err := sqlx.SelectContext(ctx, repo.querier(exec), &facs, `SELECT id, name FROM faculty ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying faculties")
	}
	return facs, nil
}

func (repo catalogRepository) CreateSubject(ctx context.Context, sub catalog.Subject, exec ...core.DBExecutor) (catalog.Subject, error) {
	_, err := repo.getExec(exec).
		ExecContext(ctx, `INSERT INTO subject (id, name, faculty_id) VALUES ($1, $2, $3)`, sub.ID, sub.Name, sub.FacultyID)
	if err != nil {
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

const subjectQuery = `
SELECT s.id, s.name, s.faculty_id, f.name AS faculty_name
FROM subject s
JOIN faculty f ON f.id = s.faculty_id`

func (repo catalogRepository) QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]catalog.Subject, error) {
	var rows []subjectRow
	err := sqlx.SelectContext(ctx, repo.querier(exec), &rows, subjectQuery+` ORDER BY s.name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subs := make([]catalog.Subject, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.subject())
	}
	return subs, nil
}

func (repo catalogRepository) GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (catalog.Subject, error) {
	var r subjectRow
	err := repo.getExec(exec).
		QueryRowContext(ctx, subjectQuery+` WHERE s.id = $1`, id).
		Scan(&r.ID, &r.Name, &r.FacultyID, &r.FacultyName)
	if err == sql.ErrNoRows {
		return catalog.Subject{}, catalog.ErrSubjectNotFound
	} else if err != nil {
		return catalog.Subject{}, errors.Wrap(err, "getting subject")
	}
	return r.subject(), nil
}

const fileColumns = `id, hash, name, display_path, subject_id, content_type, uploaded_at, uploader`

func (repo catalogRepository) CreateFile(ctx context.Context, rec catalog.FileRecord, exec ...core.DBExecutor) (catalog.FileRecord, error) {
	rec.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO file (`+fileColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Hash, rec.Name, rec.DisplayPath, rec.SubjectID, rec.ContentType, rec.UploadedAt.UTC(), rec.Uploader,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.FileRecord{}, catalog.ErrDuplicateFile
		}
		return catalog.FileRecord{}, errors.Wrap(err, "inserting file")
	}
	return rec, nil
}

func (repo catalogRepository) getFile(ctx context.Context, where, arg string, exec []core.DBExecutor) (catalog.FileRecord, error) {
	var r fileRow
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT `+fileColumns+` FROM file WHERE `+where+` = $1`, arg).
		Scan(&r.ID, &r.Hash, &r.Name, &r.DisplayPath, &r.SubjectID, &r.ContentType, &r.UploadedAt, &r.Uploader)
	if err == sql.ErrNoRows {
		return catalog.FileRecord{}, catalog.ErrFileNotFound
	} else if err != nil {
		return catalog.FileRecord{}, errors.Wrap(err, "getting file")
	}
	return r.record(), nil
}

func (repo catalogRepository) GetFileByID(ctx context.Context, id string, exec ...core.DBExecutor) (catalog.FileRecord, error) {
	return repo.getFile(ctx, "id", id, exec)
}

func (repo catalogRepository) GetFileByHash(ctx context.Context, hash string, exec ...core.DBExecutor) (catalog.FileRecord, error) {
	return repo.getFile(ctx, "hash", hash, exec)
}

func (repo catalogRepository) FilesUnder(ctx context.Context, subjectID, prefix string, exec ...core.DBExecutor) ([]catalog.FileRecord, error) {
	var rows []fileRow
	err := sqlx.SelectContext(ctx, repo.querier(exec), &rows,
		`SELECT `+fileColumns+` FROM file WHERE subject_id = $1 AND (display_path = $2 OR display_path LIKE $3)`,
		subjectID, prefix, likePrefix(prefix),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying files under path")
	}
	return fileRecords(rows), nil
}

func (repo catalogRepository) FilesAt(ctx context.Context, subjectID, path string, exec ...core.DBExecutor) ([]catalog.FileRecord, error) {
	var rows []fileRow
	err := sqlx.SelectContext(ctx, repo.querier(exec), &rows,
		`SELECT `+fileColumns+` FROM file WHERE subject_id = $1 AND display_path = $2 ORDER BY name`,
		subjectID, path,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying files at path")
	}
	return fileRecords(rows), nil
}

func (repo catalogRepository) DeleteFile(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM file WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return nil
}

// likePrefix escapes LIKE wildcards in a display-path prefix.
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+4)
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, prefix[i])
	}
	return string(escaped) + "/%"
}
