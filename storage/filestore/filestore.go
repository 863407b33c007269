// Package filestore is a content-addressed blob store on the local
// filesystem. Blobs are named by the SHA-1 hex digest of their content,
// so identical uploads collapse into one file and saves are idempotent.
package filestore

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("content not found")
	ErrInvalidHash = errors.New("invalid content hash")
)

const hashLen = 2 * sha1.Size // hex

type Store struct {
	root string
}

// New opens a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, pkgerrors.Wrap(err, "creating store root")
	}
	return &Store{root: dir}, nil
}

// Save streams r into the store and returns its content hash. The blob
// is written to a temp file first and renamed into place, so concurrent
// and repeated saves of the same content are safe.
func (st *Store) Save(r io.Reader) (string, error) {
	tmp, err := ioutil.TempFile(st.root, ".upload-*")
	if err != nil {
		return "", pkgerrors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	h := sha1.New()
	if _, err = io.Copy(tmp, io.TeeReader(r, h)); err != nil {
		tmp.Close()
		return "", pkgerrors.Wrap(err, "writing content")
	}
	if err = tmp.Close(); err != nil {
		return "", pkgerrors.Wrap(err, "closing temp file")
	}

	hash := hex.EncodeToString(h.Sum(nil))
	if err = os.Rename(tmp.Name(), st.path(hash)); err != nil {
		return "", pkgerrors.Wrap(err, "publishing content")
	}
	return hash, nil
}

func (st *Store) Exists(hash string) bool {
	if !validHash(hash) {
		return false
	}
	_, err := os.Stat(st.path(hash))
	return err == nil
}

func (st *Store) Size(hash string) (int64, error) {
	if !validHash(hash) {
		return 0, ErrInvalidHash
	}
	fi, err := os.Stat(st.path(hash))
	if os.IsNotExist(err) {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, pkgerrors.Wrap(err, "stating content")
	}
	return fi.Size(), nil
}

func (st *Store) Open(hash string) (io.ReadCloser, error) {
	if !validHash(hash) {
		return nil, ErrInvalidHash
	}
	f, err := os.Open(st.path(hash))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, pkgerrors.Wrap(err, "opening content")
	}
	return f, nil
}

// Delete removes a blob; deleting an absent blob fails with ErrNotFound.
func (st *Store) Delete(hash string) error {
	if !validHash(hash) {
		return ErrInvalidHash
	}
	err := os.Remove(st.path(hash))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return pkgerrors.Wrap(err, "deleting content")
}

func (st *Store) path(hash string) string {
	return filepath.Join(st.root, hash)
}

// validHash guards against path traversal as much as malformed input.
func validHash(hash string) bool {
	if len(hash) != hashLen {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
