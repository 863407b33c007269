package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cs-students/markis/core"
)

type Faculty struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FacultyID   int    `json:"faculty_id"`
	FacultyName string `json:"faculty_name"`
}

// FileRecord is the catalog entry for one stored file. It is "live" only
// when its content hash resolves to existing bytes in the blob store;
// dangling records are excluded from all listings.
type FileRecord struct {
	ID          string    `json:"id"`
	Hash        string    `json:"hash"`
	Name        string    `json:"name"`
	DisplayPath string    `json:"display_path"`
	SubjectID   string    `json:"subject_id"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"` // UTC
	Uploader    string    `json:"uploader"`
}

// Folder is a derived navigation entry; folders are never stored.
type Folder struct {
	Name       string `json:"name"`
	HasContent bool   `json:"has_content"`
}

// FileInfo is a listing entry: a live FileRecord annotated with the
// aggregate score, the requesting user's own engagement state, a
// human-readable size and the uploader's display name.
type FileInfo struct {
	FileRecord
	Score        int    `json:"score"`
	UserVote     int    `json:"user_vote"`
	Favorite     bool   `json:"favorite"`
	Size         string `json:"size"`
	UploaderName string `json:"uploader_name"`
	DownloadPath string `json:"download_path"`
}

// FolderView is what a browse request resolves to: the child folders of a
// path and the files filed directly under it.
type FolderView struct {
	Folders []Folder   `json:"folders"`
	Files   []FileInfo `json:"files"`
}

// NewFile contains information needed to catalog an uploaded file.
type NewFile struct {
	Name        string `json:"name" validate:"required,max=200"`
	SubjectID   string `json:"subject_id" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Year        int    `json:"year"`    // structured categories only
	Subtype     string `json:"subtype"` // structured categories only
	ContentType string `json:"content_type" validate:"required,max=127"`
	Uploader    string `json:"uploader" validate:"required"`
}

func (nf *NewFile) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nf.Name = core.CleanString(nf.Name)
	nf.SubjectID = core.CleanString(nf.SubjectID)
	nf.Category = core.CleanString(nf.Category, true /* lower */)
	nf.Subtype = core.CleanString(nf.Subtype, true /* lower */)

	if err := validate.Struct(nf); err != nil {
		return err
	}
	return svc.checkNewFile(ctx, nf)
}

// DisplayPath derives the virtual folder path the file is filed under.
func (nf NewFile) DisplayPath() string {
	if IsStructured(nf.Category) {
		return nf.Category + "/" + PeriodName(nf.Year) + "/" + nf.Subtype
	}
	return nf.Category
}

// YearPeriod is an academic-year choice for the upload form.
type YearPeriod struct {
	Year  int    `json:"year"`
	Label string `json:"label"`
}

// PeriodName formats the display-path segment for an academic year
// starting in `year`, e.g. "2020-2021".
func PeriodName(year int) string {
	return fmt.Sprintf("%d-%d", year, year+1)
}

// AcademicYear returns the starting year of the academic year `now` falls
// in; the year rolls over in August.
func AcademicYear(now time.Time) int {
	year := now.Year()
	if now.Month() < time.August {
		year--
	}
	return year
}

// YearPeriods lists all academic-year choices from the initial year up to
// the current one. The first entry collects everything older.
func YearPeriods(initialYear int, now time.Time) []YearPeriod {
	periods := []YearPeriod{
		{Year: initialYear, Label: fmt.Sprintf("%d - %d (and earlier)", initialYear, initialYear+1)},
	}
	for year := initialYear + 1; year <= AcademicYear(now); year++ {
		periods = append(periods, YearPeriod{Year: year, Label: fmt.Sprintf("%d - %d", year, year+1)})
	}
	return periods
}

// FormatByteSize renders a size the way listings show it: one decimal,
// 1024 per step.
func FormatByteSize(size int64) string {
	switch {
	case size >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(size)/(1<<30))
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f Kb", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d b", size)
	}
}
