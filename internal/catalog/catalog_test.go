// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/felixleeca/recalllens/pkg/types"
)

func writeFeed(t *testing.T, catalogDir, source, name string, feed FeedFile) string {
	t.Helper()
	dir := filepath.Join(catalogDir, feedsDir, source)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	data, err := yaml.Marshal(feed)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testFeed() FeedFile {
	return FeedFile{
		Source: types.SourceFDA,
		Records: []types.RecallRecord{
			{
				ID:      "F-2025-0042",
				Brands:  []string{"Acme Foods", "acme foods", "  ACME FOODS "},
				Product: "peanut butter crunch crackers",
				UPCs:    []string{"012345678905", "0-12345-67890-5", "036000291452"},
				Hazard:  "undeclared peanut allergen",
				Actions: []string{"Do not consume"},
				Status:  types.StatusOngoing,
			},
			{
				ID:      "F-2025-0043",
				Brands:  []string{"zenith dairy"},
				Product: "whole milk",
				Status:  types.StatusTerminated,
			},
		},
	}
}

func openStore(t *testing.T, catalogDir string) *Store {
	t.Helper()
	store, err := NewStore(types.CatalogConfig{CatalogDir: catalogDir})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIngestAndGet(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "2025-q1.yaml", testFeed())

	store := openStore(t, dir)
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Records)

	rec, err := store.Get(context.Background(), types.SourceFDA, "F-2025-0042")
	require.NoError(t, err)

	// Brands deduplicated and lowercased on the way in.
	assert.Equal(t, []string{"acme foods"}, rec.Brands)
	// UPCs deduplicated by digit content and canonicalized.
	assert.Equal(t, []string{"012345678905", "036000291452"}, rec.UPCs)
	assert.Equal(t, types.StatusOngoing, rec.Status)
}

func TestIngestSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "2025-q1.yaml", testFeed())

	store := openStore(t, dir)
	ctx := context.Background()

	var buf strings.Builder
	_, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)

	summary, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Indexed)
}

func TestIngestReindexesChanged(t *testing.T) {
	dir := t.TempDir()
	path := writeFeed(t, dir, "fda", "2025-q1.yaml", testFeed())

	store := openStore(t, dir)
	ctx := context.Background()

	var buf strings.Builder
	_, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)

	feed := testFeed()
	feed.Records[0].Status = types.StatusTerminated
	data, err := yaml.Marshal(feed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	rec, err := store.Get(ctx, types.SourceFDA, "F-2025-0042")
	require.NoError(t, err)
	assert.Equal(t, types.StatusTerminated, rec.Status)
}

func TestIngestMalformedFeedFailsThatFileOnly(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "good.yaml", testFeed())

	badDir := filepath.Join(dir, feedsDir, "fsis")
	require.NoError(t, os.MkdirAll(badDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "bad.yaml"), []byte("records: [not closed"), 0o644))

	store := openStore(t, dir)
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, buf.String(), "failed")
}

func TestIngestDropsRecordsWithoutID(t *testing.T) {
	dir := t.TempDir()
	feed := testFeed()
	feed.Records = append(feed.Records, types.RecallRecord{Product: "no id"})
	writeFeed(t, dir, "fda", "feed.yaml", feed)

	store := openStore(t, dir)
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Records)
}

func TestCandidatesByUPC(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "feed.yaml", testFeed())

	store := openStore(t, dir)
	ctx := context.Background()
	var buf strings.Builder
	_, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)

	got, err := store.Candidates(ctx, types.ScanInput{UPC: "012345678905"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "F-2025-0042", got[0].ID)

	// Separators in the scanned UPC do not defeat the index.
	got, err = store.Candidates(ctx, types.ScanInput{UPC: "0-12345-67890-5"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// An invalid barcode pulls no UPC candidates.
	got, err = store.Candidates(ctx, types.ScanInput{UPC: "012345678904"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandidatesByKeyword(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "feed.yaml", testFeed())

	store := openStore(t, dir)
	ctx := context.Background()
	var buf strings.Builder
	_, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)

	got, err := store.Candidates(ctx, types.ScanInput{Product: "peanut butter crackers"})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "F-2025-0042", got[0].ID)

	got, err = store.Candidates(ctx, types.ScanInput{Brand: "zenith"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "F-2025-0043", got[0].ID)

	got, err = store.Candidates(ctx, types.ScanInput{Product: "lawnmower"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandidatesMergesRoutes(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "feed.yaml", testFeed())

	store := openStore(t, dir)
	ctx := context.Background()
	var buf strings.Builder
	_, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)

	got, err := store.Candidates(ctx, types.ScanInput{
		UPC:   "012345678905",
		Brand: "zenith dairy",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// UPC hits come first.
	assert.Equal(t, "F-2025-0042", got[0].ID)
}

func TestQueryFilters(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "feed.yaml", testFeed())

	store := openStore(t, dir)
	ctx := context.Background()
	var buf strings.Builder
	_, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)

	got, err := store.Query(ctx, QueryOptions{Status: types.StatusOngoing})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "F-2025-0042", got[0].ID)

	got, err = store.Query(ctx, QueryOptions{Text: "peanut"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = store.Query(ctx, QueryOptions{Source: types.SourceCPSC})
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "fda", "feed.yaml", testFeed())

	store := openStore(t, dir)
	ctx := context.Background()
	var buf strings.Builder
	_, err := store.Ingest(ctx, &buf)
	require.NoError(t, err)

	require.NoError(t, store.ExportYAML(ctx))
	data, err := os.ReadFile(filepath.Join(dir, indexDir, "export.yaml"))
	require.NoError(t, err)

	var out exportFile
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Len(t, out.Records, 2)

	require.NoError(t, store.ExportJSON(ctx))
	_, err = os.Stat(filepath.Join(dir, indexDir, "export.json"))
	assert.NoError(t, err)
}
