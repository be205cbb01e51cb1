// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/felixleeca/recalllens/internal/barcode"
	"github.com/felixleeca/recalllens/pkg/types"
)

// FeedFile is the on-disk format of one normalized recall feed, produced
// by the per-source fetch scripts.
type FeedFile struct {
	// Source is the issuing agency for every record in the file. Records
	// may override it, but in practice never do.
	Source types.Source `yaml:"source"`

	// Records holds the normalized recall records.
	Records []types.RecallRecord `yaml:"records"`
}

// IngestSummary holds counts from a catalog ingest run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Records int
}

// Total returns the number of feed files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads feed YAML files from catalogDir/feeds/ (one subdirectory
// per source) and populates the database. Unchanged files are skipped by
// modification time on subsequent runs. A malformed feed file fails that
// file only.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	root := filepath.Join(s.catalogDir, feedsDir)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading feeds directory %s: %w", root, err)
	}

	var summary IngestSummary

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(s.catalogDir, path)
		if relErr != nil {
			rel = path
		}

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rel, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM feed_status WHERE feed_path = ?`, rel,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", rel)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rel, err)
			summary.Failed++
			continue
		}

		var feed FeedFile
		if err := yaml.Unmarshal(data, &feed); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", rel, err)
			summary.Failed++
			continue
		}

		count, err := s.ingestFeed(ctx, rel, feed, modTime)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rel, err)
			summary.Failed++
			continue
		}
		summary.Records += count

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d records)\n", rel, count)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d records)\n", rel, count)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d (%d records)\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Records)

	return summary, nil
}

// ingestFeed upserts one feed file's records in a single transaction.
func (s *Store) ingestFeed(ctx context.Context, rel string, feed FeedFile, modTime string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	recordStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (key, id, source, status, published, updated, search_text, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			status=excluded.status, published=excluded.published,
			updated=excluded.updated, search_text=excluded.search_text,
			data=excluded.data`)
	if err != nil {
		return 0, fmt.Errorf("preparing record insert: %w", err)
	}
	defer recordStmt.Close()

	upcStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO record_upcs (record_key, upc, family) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing upc insert: %w", err)
	}
	defer upcStmt.Close()

	count := 0
	for _, raw := range feed.Records {
		rec, ok := normalizeRecord(raw, feed.Source)
		if !ok {
			continue
		}
		key := recordKey(rec)

		dataJSON, err := json.Marshal(rec)
		if err != nil {
			return count, fmt.Errorf("encoding record %s: %w", key, err)
		}

		_, err = recordStmt.ExecContext(ctx,
			key, rec.ID, string(rec.Source), string(rec.Status),
			rec.Published, rec.Updated, searchText(rec), string(dataJSON),
		)
		if err != nil {
			return count, fmt.Errorf("upserting record %s: %w", key, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM record_upcs WHERE record_key = ?`, key); err != nil {
			return count, fmt.Errorf("clearing upcs for %s: %w", key, err)
		}
		for _, upc := range rec.UPCs {
			id := barcode.Normalize(upc)
			if _, err := upcStmt.ExecContext(ctx, key, upc, familyKey(id)); err != nil {
				return count, fmt.Errorf("inserting upc for %s: %w", key, err)
			}
		}
		count++
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO feed_status (feed_path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(feed_path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		rel, modTime,
	)
	if err != nil {
		return count, fmt.Errorf("updating feed status: %w", err)
	}

	return count, tx.Commit()
}

// normalizeRecord enforces the record invariants on the way in: brands
// lowercased and deduplicated, UPCs deduplicated by digit content, source
// defaulted from the feed, status defaulted to unknown. Records without an
// ID are dropped.
func normalizeRecord(r types.RecallRecord, feedSource types.Source) (types.RecallRecord, bool) {
	if strings.TrimSpace(r.ID) == "" {
		return r, false
	}
	if r.Source == "" {
		r.Source = feedSource
	}
	if r.Source == "" {
		return r, false
	}
	if r.Status == "" {
		r.Status = types.StatusUnknown
	}

	r.Brands = dedupeStrings(r.Brands, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	r.UPCs = dedupeStrings(r.UPCs, func(s string) string {
		return barcode.Normalize(s).Digits
	})
	r.Product = strings.TrimSpace(r.Product)

	return r, true
}

// dedupeStrings normalizes each entry and drops empties and duplicates,
// preserving first-seen order.
func dedupeStrings(in []string, normalize func(string) string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		n := normalize(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// searchText is the FTS document for a record: brand variants, product
// description, and hazard text.
func searchText(r types.RecallRecord) string {
	parts := make([]string, 0, len(r.Brands)+2)
	parts = append(parts, r.Brands...)
	if r.Product != "" {
		parts = append(parts, r.Product)
	}
	if r.Hazard != "" {
		parts = append(parts, r.Hazard)
	}
	return strings.Join(parts, " ")
}
