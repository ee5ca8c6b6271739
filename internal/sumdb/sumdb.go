// Package sumdb persists computed checksums to a SQLite database so
// repeated runs over the same media can be compared after the fact.
package sumdb

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const createChecksumsTable = `
CREATE TABLE IF NOT EXISTS checksums (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	path       TEXT NOT NULL,
	crc32c     TEXT NOT NULL,
	size       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS checksums_path_idx ON checksums(path);`

const insertChecksumStmt = `
INSERT INTO checksums (path, crc32c, size) VALUES (?, ?, ?);`

// DB appends checksum records inside a single transaction that is
// committed on Close, so a crashed run leaves no partial rows.
type DB struct {
	db   *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}
	if _, err := db.Exec(createChecksumsTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create checksums table")
	}
	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}
	stmt, err := tx.Prepare(insertChecksumStmt)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}
	return &DB{db: db, tx: tx, stmt: stmt}, nil
}

// Add records one computed checksum.
func (d *DB) Add(path string, crc uint32, size int64) error {
	_, err := d.stmt.Exec(path, fmt.Sprintf("%08X", crc), size)
	return errors.Wrapf(err, "record checksum for %s", path)
}

// Close commits the pending records and closes the database.
func (d *DB) Close() error {
	if err := d.stmt.Close(); err != nil {
		d.tx.Rollback()
		d.db.Close()
		return err
	}
	if err := d.tx.Commit(); err != nil {
		d.db.Close()
		return err
	}
	return d.db.Close()
}
