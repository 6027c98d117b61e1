package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore keeps each collection as one JSON array file under its data
// directory. Writes go to a temp file in the same directory followed by a
// rename, so a crash mid-write leaves either the old or the new content.
type FileStore struct {
	dir   string
	locks lockTable
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Load(name string) ([]json.RawMessage, error) {
	l := s.locks.get(name)
	l.Lock()
	defer l.Unlock()
	return s.loadLocked(name)
}

func (s *FileStore) Replace(name string, records []json.RawMessage) error {
	l := s.locks.get(name)
	l.Lock()
	defer l.Unlock()
	return s.replaceLocked(name, records)
}

func (s *FileStore) Update(name string, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	l := s.locks.get(name)
	l.Lock()
	defer l.Unlock()

	records, err := s.loadLocked(name)
	if err != nil {
		return err
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	return s.replaceLocked(name, next)
}

func (s *FileStore) loadLocked(name string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		// First access initializes the collection to empty.
		if werr := s.replaceLocked(name, nil); werr != nil {
			return nil, werr
		}
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read collection %s", name)
	}
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "decode collection %s", name)
	}
	return records, nil
}

func (s *FileStore) replaceLocked(name string, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode collection %s", name)
	}

	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "write collection %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write collection %s", name)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "sync collection %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "write collection %s", name)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.Wrapf(err, "replace collection %s", name)
	}
	return nil
}
