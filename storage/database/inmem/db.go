// Package inmemdb backs the repositories with plain maps. It exists for
// tests and local tinkering; vote read-modify-writes are serialized by
// the table mutex instead of row locks.
package inmemdb

import (
	"sync"

	"github.com/cs-students/markis/core/catalog"
)

type (
	DB struct {
		mutex sync.RWMutex

		faculties map[int]catalog.Faculty
		subjects  map[string]catalog.Subject
		files     map[string]catalog.FileRecord // by ID
		votes     map[favKey]int
		favorites map[favKey]struct{}

		facultyPK int
	}

	favKey struct {
		username string
		fileID   string
	}
)

func Open() *DB {
	return &DB{
		faculties: make(map[int]catalog.Faculty),
		subjects:  make(map[string]catalog.Subject),
		files:     make(map[string]catalog.FileRecord),
		votes:     make(map[favKey]int),
		favorites: make(map[favKey]struct{}),
	}
}
