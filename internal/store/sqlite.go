package store

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists collections as ordered document rows in sqlite. One
// row per record; Replace swaps the whole collection inside a transaction.
// This is the document-store deployment option; FileStore is the flat-file
// one.
type SQLiteStore struct {
	db    *sqlx.DB
	locks lockTable
}

func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open store db")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping store db")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS collections(
  name TEXT NOT NULL,
  pos  INTEGER NOT NULL,
  doc  TEXT NOT NULL,
  PRIMARY KEY (name, pos)
);
`
	_, err := db.Exec(schema)
	return errors.Wrap(err, "ensure schema")
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(name string) ([]json.RawMessage, error) {
	l := s.locks.get(name)
	l.Lock()
	defer l.Unlock()
	return s.loadLocked(name)
}

func (s *SQLiteStore) Replace(name string, records []json.RawMessage) error {
	l := s.locks.get(name)
	l.Lock()
	defer l.Unlock()
	return s.replaceLocked(name, records)
}

func (s *SQLiteStore) Update(name string, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
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

func (s *SQLiteStore) loadLocked(name string) ([]json.RawMessage, error) {
	var docs []string
	err := s.db.Select(&docs, `SELECT doc FROM collections WHERE name = ? ORDER BY pos`, name)
	if err != nil {
		return nil, errors.Wrapf(err, "load collection %s", name)
	}
	records := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		records = append(records, json.RawMessage(d))
	}
	return records, nil
}

func (s *SQLiteStore) replaceLocked(name string, records []json.RawMessage) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrapf(err, "replace collection %s", name)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM collections WHERE name = ?`, name); err != nil {
		return errors.Wrapf(err, "replace collection %s", name)
	}
	for i, rec := range records {
		if _, err := tx.Exec(`INSERT INTO collections(name, pos, doc) VALUES(?,?,?)`,
			name, i, string(rec)); err != nil {
			return errors.Wrapf(err, "replace collection %s", name)
		}
	}
	return errors.Wrapf(tx.Commit(), "replace collection %s", name)
}
