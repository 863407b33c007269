package catalog

import "strings"

// Structured categories hold three levels (category/year-period/subtype);
// flat categories are a single folder. The set is part of the schema, not
// of the configuration.
var structuredCategories = map[string]struct{}{
	"exams":    {},
	"homework": {},
}

const (
	SubtypeQuestions = "questions"
	SubtypeAnswers   = "answers"
)

func IsStructured(category string) bool {
	_, ok := structuredCategories[category]
	return ok
}

func IsSubtype(s string) bool {
	return s == SubtypeQuestions || s == SubtypeAnswers
}

// FolderPath is the typed form of a display path below a subject root:
// a category, optionally a year-period and a subtype.
type FolderPath struct {
	Category   string
	Structured bool
	Period     string // "2020-2021"; structured categories only
	Subtype    string // "questions" | "answers"; structured categories only
}

// Depth reports how many levels deep the path goes (1..3).
func (p FolderPath) Depth() int {
	switch {
	case p.Subtype != "":
		return 3
	case p.Period != "":
		return 2
	default:
		return 1
	}
}

func (p FolderPath) String() string {
	parts := []string{p.Category}
	if p.Period != "" {
		parts = append(parts, p.Period)
	}
	if p.Subtype != "" {
		parts = append(parts, p.Subtype)
	}
	return strings.Join(parts, "/")
}

// ParseFolderPath validates a raw '/'-separated path against the
// configured category set. Unknown categories, levels below a flat
// category, invalid subtypes and paths deeper than three levels all
// resolve to ErrNoFolder.
func ParseFolderPath(categories []string, path string) (FolderPath, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" || len(parts) > 3 {
		return FolderPath{}, ErrNoFolder
	}

	var known bool
	for _, cat := range categories {
		if parts[0] == cat {
			known = true
			break
		}
	}
	if !known {
		return FolderPath{}, ErrNoFolder
	}

	p := FolderPath{Category: parts[0], Structured: IsStructured(parts[0])}
	if len(parts) == 1 {
		return p, nil
	}
	if !p.Structured {
		return FolderPath{}, ErrNoFolder // flat categories have no sub-folders
	}

	if parts[1] == "" {
		return FolderPath{}, ErrNoFolder
	}
	p.Period = parts[1]
	if len(parts) == 2 {
		return p, nil
	}

	if !IsSubtype(parts[2]) {
		return FolderPath{}, ErrNoFolder
	}
	p.Subtype = parts[2]
	return p, nil
}
