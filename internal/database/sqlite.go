// Package database provides SQLite persistence for the device registry and
// the issued-token audit log.
package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) *SQLiteStore {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v\n", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Fatalf("failed to init database schema: couldn't enable foreign keys: %v\n", err)
	}

	if err := initSchema(db); err != nil {
		log.Fatalf("failed to init database: %v\n", err)
	}

	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	if err := initTable(db, "device", `
		CREATE TABLE IF NOT EXISTS device (
			id          INTEGER PRIMARY KEY,
			hardware_id TEXT UNIQUE,
			name        TEXT,
			public_key  BLOB,
			registered  INTEGER
		);`,
	); err != nil {
		return err
	}

	if err := initTable(db, "issuance", `
		CREATE TABLE IF NOT EXISTS issuance (
			id          INTEGER PRIMARY KEY,
			device      INTEGER,
			jti         TEXT UNIQUE,
			expiration  INTEGER,
			FOREIGN KEY (device) REFERENCES device (id)
		);`,
	); err != nil {
		return err
	}

	return nil
}

func initTable(
	db *sql.DB,
	name string,
	sql string,
) error {
	if _, err := db.Exec(sql); err != nil {
		return fmt.Errorf("failed to init '%s' table schema: %v", name, err)
	}
	return nil
}
