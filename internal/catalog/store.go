// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists normalized recall records and serves the
// pre-filtered candidate sets the decision engine evaluates. It plays the
// data-retrieval collaborator role: feeds are already fetched and
// normalized upstream; the catalog indexes them for UPC-family and
// keyword lookup.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/felixleeca/recalllens/pkg/types"
)

const (
	feedsDir = "feeds"
	indexDir = "index"
	dbFile   = "catalog.db"
)

// Store manages the recall catalog SQLite database.
type Store struct {
	db            *sql.DB
	catalogDir    string
	maxCandidates int
}

// NewStore opens or creates the catalog database at
// catalogDir/index/catalog.db, creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 200
	}

	s := &Store{
		db:            db,
		catalogDir:    cfg.CatalogDir,
		maxCandidates: maxCandidates,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT NOT NULL UNIQUE,
			id TEXT NOT NULL,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			published TEXT,
			updated TEXT,
			search_text TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source ON records(source)`,
		`CREATE INDEX IF NOT EXISTS idx_records_status ON records(status)`,
		`CREATE TABLE IF NOT EXISTS record_upcs (
			record_key TEXT NOT NULL,
			upc TEXT NOT NULL,
			family TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_record_upcs_family ON record_upcs(family)`,
		`CREATE INDEX IF NOT EXISTS idx_record_upcs_key ON record_upcs(record_key)`,
		`CREATE TABLE IF NOT EXISTS feed_status (
			feed_path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over brand/product/hazard text, with triggers
	// keeping it in sync with records.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(search_text, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
				INSERT INTO records_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// recordKey is the catalog-wide unique key: IDs are only unique within
// their source.
func recordKey(r types.RecallRecord) string {
	return string(r.Source) + ":" + r.ID
}
