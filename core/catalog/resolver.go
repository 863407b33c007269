package catalog

import (
	"context"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Browse resolves a virtual folder path below a subject to the view the
// caller navigates: child folders plus the files filed exactly there,
// annotated for user. An empty path is the subject root (the category
// folders). Paths below the category level only exist while at least one
// live file is filed under them.
func (svc *Service) Browse(ctx context.Context, user, subjectID, path string) (FolderView, error) {
	if _, err := svc.repo.GetSubject(ctx, subjectID); err != nil {
		return FolderView{}, err
	}

	if strings.Trim(path, "/") == "" {
		return svc.browseRoot(ctx, user, subjectID)
	}

	p, err := ParseFolderPath(svc.conf.Catalog.Categories, path)
	if err != nil {
		return FolderView{}, err
	}
	if p.Depth() >= 2 {
		ok, err := svc.folderHasContent(ctx, subjectID, p.String())
		if err != nil {
			return FolderView{}, err
		}
		if !ok {
			return FolderView{}, ErrNoFolder
		}
	}

	var view FolderView
	switch {
	case p.Depth() == 1 && p.Structured:
		if view.Folders, err = svc.periodFolders(ctx, subjectID, p.Category); err != nil {
			return FolderView{}, err
		}
	case p.Depth() == 2:
		for _, sub := range []string{SubtypeQuestions, SubtypeAnswers} {
			ok, err := svc.folderHasContent(ctx, subjectID, p.String()+"/"+sub)
			if err != nil {
				return FolderView{}, err
			}
			view.Folders = append(view.Folders, Folder{Name: sub, HasContent: ok})
		}
	}

	if view.Files, err = svc.Files(ctx, user, subjectID, p.String()); err != nil {
		return FolderView{}, err
	}
	if view.Folders == nil {
		view.Folders = []Folder{}
	}
	return view, nil
}

// browseRoot lists the category folders of a subject. The root always
// exists and never holds files directly.
func (svc *Service) browseRoot(ctx context.Context, user, subjectID string) (FolderView, error) {
	view := FolderView{Folders: make([]Folder, 0, len(svc.conf.Catalog.Categories)), Files: []FileInfo{}}
	for _, cat := range svc.conf.Catalog.Categories {
		ok, err := svc.folderHasContent(ctx, subjectID, cat)
		if err != nil {
			return FolderView{}, err
		}
		view.Folders = append(view.Folders, Folder{Name: cat, HasContent: ok})
	}
	return view, nil
}

// folderHasContent reports whether at least one live file is filed at or
// below prefix. Dangling records do not keep a folder alive.
func (svc *Service) folderHasContent(ctx context.Context, subjectID, prefix string) (bool, error) {
	recs, err := svc.repo.FilesUnder(ctx, subjectID, prefix)
	if err != nil {
		return false, pkgerrors.Wrap(err, "listing folder content")
	}
	for _, rec := range recs {
		if svc.isLive(rec) {
			return true, nil
		}
	}
	return false, nil
}

// periodFolders enumerates the year-period folders of a structured
// category from the live files filed under it, newest first.
func (svc *Service) periodFolders(ctx context.Context, subjectID, category string) ([]Folder, error) {
	recs, err := svc.repo.FilesUnder(ctx, subjectID, category+"/")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing periods")
	}

	seen := make(map[string]struct{})
	var periods []string
	for _, rec := range recs {
		if !svc.isLive(rec) {
			continue
		}
		parts := strings.Split(rec.DisplayPath, "/")
		if len(parts) < 2 {
			continue
		}
		if _, ok := seen[parts[1]]; ok {
			continue
		}
		seen[parts[1]] = struct{}{}
		periods = append(periods, parts[1])
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))

	folders := make([]Folder, 0, len(periods))
	for _, period := range periods {
		folders = append(folders, Folder{Name: period, HasContent: true})
	}
	return folders, nil
}
