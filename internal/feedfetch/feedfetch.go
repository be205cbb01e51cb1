// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feedfetch downloads recall data from the official agency APIs and
// writes feed files the catalog ingests. Each agency is a backend behind a
// common interface; a failing backend fails that source only.
package feedfetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/felixleeca/recalllens/internal/catalog"
	"github.com/felixleeca/recalllens/pkg/types"
)

// Backend fetches recall records from one agency API.
type Backend interface {
	// Name returns the backend identifier used in progress output.
	Name() string

	// Source returns the agency the backend covers.
	Source() types.Source

	// Fetch downloads and maps the agency's recall records.
	Fetch(ctx context.Context, cfg types.FetchConfig) ([]types.RecallRecord, error)
}

// fetchedFeedName is the file each backend's records are written to, under
// the source's feed directory. Hand-maintained feed files live alongside it.
const fetchedFeedName = "fetched.yaml"

// FetchSummary holds counts from a fetch run.
type FetchSummary struct {
	Fetched int
	Failed  int
	Records int
}

// FetchAll runs every backend and writes each source's records to
// catalogDir/feeds/<source>/fetched.yaml. Progress goes to w; a backend
// failure is reported and counted but does not abort the run.
func FetchAll(ctx context.Context, backends []Backend, cfg types.FetchConfig, catalogDir string, w io.Writer) (FetchSummary, error) {
	var summary FetchSummary

	for _, b := range backends {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		records, err := b.Fetch(ctx, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", b.Name(), err)
			summary.Failed++
			continue
		}

		if err := writeFeed(catalogDir, b.Source(), records); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", b.Name(), err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "fetched %s (%d records)\n", b.Name(), len(records))
		summary.Fetched++
		summary.Records += len(records)
	}

	fmt.Fprintf(w, "\nfetched: %d, failed: %d (%d records)\n",
		summary.Fetched, summary.Failed, summary.Records)

	return summary, nil
}

func writeFeed(catalogDir string, source types.Source, records []types.RecallRecord) error {
	dir := filepath.Join(catalogDir, "feeds", string(source))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating feed directory: %w", err)
	}

	data, err := yaml.Marshal(catalog.FeedFile{Source: source, Records: records})
	if err != nil {
		return fmt.Errorf("encoding feed: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, fetchedFeedName), data, 0o644)
}

// DefaultBackends returns one backend per supported agency.
func DefaultBackends() []Backend {
	return []Backend{
		&OpenFDABackend{},
		&FSISBackend{},
		&CPSCBackend{},
	}
}
