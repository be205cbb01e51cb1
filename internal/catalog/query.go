// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/felixleeca/recalllens/internal/barcode"
	"github.com/felixleeca/recalllens/internal/textmatch"
	"github.com/felixleeca/recalllens/pkg/types"
)

// familyKey is the UPC index key: the kind plus the data digits with the
// check digit dropped, so packaging variants that differ only in the
// trailing digit land in the same index bucket. Invalid identifiers are
// indexed by their literal digits.
func familyKey(id types.NormalizedIdentifier) string {
	switch id.Kind {
	case types.KindUPCA:
		return string(id.Kind) + ":" + id.Digits[:11]
	case types.KindEAN13:
		return string(id.Kind) + ":" + id.Digits[:12]
	case types.KindEAN8:
		return string(id.Kind) + ":" + id.Digits
	default:
		return "raw:" + id.Digits
	}
}

// Candidates returns the pre-filtered candidate set for a scan: records
// sharing the scan's UPC family, plus records whose brand/product/hazard
// text matches the scan's keywords. The decision engine re-verifies every
// candidate; this filter only bounds the set it has to look at.
func (s *Store) Candidates(ctx context.Context, scan types.ScanInput) ([]types.RecallRecord, error) {
	var keys []string
	seen := make(map[string]bool)

	if scan.UPC != "" {
		id := barcode.Normalize(scan.UPC)
		if id.IsValid {
			upcKeys, err := s.keysByFamily(ctx, familyKey(id))
			if err != nil {
				return nil, err
			}
			for _, k := range upcKeys {
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}

	if scan.Brand != "" || scan.Product != "" {
		query := ftsQuery(scan.Brand + " " + scan.Product)
		if query != "" {
			textKeys, err := s.keysByText(ctx, query)
			if err != nil {
				return nil, err
			}
			for _, k := range textKeys {
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}

	if len(keys) > s.maxCandidates {
		keys = keys[:s.maxCandidates]
	}
	return s.recordsByKeys(ctx, keys)
}

func (s *Store) keysByFamily(ctx context.Context, family string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT record_key FROM record_upcs WHERE family = ?`, family)
	if err != nil {
		return nil, fmt.Errorf("querying upc index: %w", err)
	}
	defer rows.Close()
	return scanKeys(rows)
}

func (s *Store) keysByText(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.key
		 FROM records_fts
		 JOIN records r ON r.rowid = records_fts.rowid
		 WHERE records_fts MATCH ?
		 ORDER BY records_fts.rank
		 LIMIT ?`, query, s.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("querying text index: %w", err)
	}
	defer rows.Close()
	return scanKeys(rows)
}

func scanKeys(rows *sql.Rows) ([]string, error) {
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ftsQuery turns free text into an FTS5 OR-query of quoted tokens, so a
// partial brand or product read still pulls plausible candidates.
func ftsQuery(text string) string {
	words := strings.Fields(textmatch.Normalize(text))
	if len(words) == 0 {
		return ""
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	return strings.Join(quoted, " OR ")
}

// recordsByKeys loads and decodes records preserving the key order.
func (s *Store) recordsByKeys(ctx context.Context, keys []string) ([]types.RecallRecord, error) {
	records := make([]types.RecallRecord, 0, len(keys))
	for _, key := range keys {
		var data string
		err := s.db.QueryRowContext(ctx,
			`SELECT data FROM records WHERE key = ?`, key).Scan(&data)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading record %s: %w", key, err)
		}
		var rec types.RecallRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", key, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns one record by source and source-native ID.
func (s *Store) Get(ctx context.Context, source types.Source, id string) (types.RecallRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE key = ?`, string(source)+":"+id).Scan(&data)
	if err == sql.ErrNoRows {
		return types.RecallRecord{}, fmt.Errorf("record %s/%s not found", source, id)
	}
	if err != nil {
		return types.RecallRecord{}, fmt.Errorf("loading record: %w", err)
	}
	var rec types.RecallRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return types.RecallRecord{}, fmt.Errorf("decoding record: %w", err)
	}
	return rec, nil
}

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Text is a full-text search over brands, product, and hazard.
	Text string

	// Source filters by issuing agency.
	Source types.Source

	// Status filters by recall lifecycle state.
	Status types.RecallStatus

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.Source == "" && q.Status == ""
}

// Query searches the catalog with optional full-text search and
// structured filters. Full-text results are relevance-ranked; filter-only
// results are ordered by key.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.RecallRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxCandidates
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != ""
	)

	if useFTS {
		query := ftsQuery(opts.Text)
		if query == "" {
			return nil, nil
		}
		qb.WriteString(
			`SELECT r.data FROM records_fts
			 JOIN records r ON r.rowid = records_fts.rowid
			 WHERE records_fts MATCH ?`)
		args = append(args, query)
	} else {
		qb.WriteString(`SELECT r.data FROM records r WHERE 1=1`)
	}

	if opts.Source != "" {
		qb.WriteString(` AND r.source = ?`)
		args = append(args, string(opts.Source))
	}
	if opts.Status != "" {
		qb.WriteString(` AND r.status = ?`)
		args = append(args, string(opts.Status))
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.key`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var records []types.RecallRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var rec types.RecallRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of records in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// exportFile is the on-disk export format.
type exportFile struct {
	Records []types.RecallRecord `json:"records" yaml:"records"`
}

// ExportYAML writes the full catalog (ordered by key) to
// catalogDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	records, err := s.Query(ctx, QueryOptions{MaxResults: 1 << 30})
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(exportFile{Records: records})
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(filepath.Join(s.catalogDir, indexDir, "export.yaml"), data, 0o644)
}

// ExportJSON writes the full catalog (ordered by key) to
// catalogDir/index/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	records, err := s.Query(ctx, QueryOptions{MaxResults: 1 << 30})
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(exportFile{Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(filepath.Join(s.catalogDir, indexDir, "export.json"), data, 0o644)
}
