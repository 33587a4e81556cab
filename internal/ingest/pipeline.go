package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ossgrants/grantgraph/backend/internal/util"
	"github.com/ossgrants/grantgraph/backend/pkg/graph"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
	"github.com/ossgrants/grantgraph/backend/pkg/normalize"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	fileMaxWorkers     = 5
	downloadRetries    = 3
)

// Source is one funder dataset to ingest, either a portal page linking to
// data files or a paginated registry API.
type Source struct {
	Name      string
	PortalURL string
	APIURL    string
}

// GraphLoader is the slice of the graph store the pipeline writes through.
type GraphLoader interface {
	EnsureSchema(ctx context.Context) error
	Clear(ctx context.Context) error
	LoadGrants(ctx context.Context, records []graph.GrantRecord) error
}

// Archiver stores snapshot copies off-box.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, key string, body io.Reader) error
}

// Pipeline runs a full dataset refresh: fetch every source, normalize and
// merge, snapshot to disk, then rebuild the graph. Only one refresh runs at
// a time.
type Pipeline struct {
	sources      []Source
	mapper       *normalize.HeaderMapper
	store        GraphLoader
	archiver     Archiver
	snapshotPath string
	httpClient   *http.Client
	busy         atomic.Bool
}

type NewPipelineParams struct {
	Sources      []Source
	Mapper       *normalize.HeaderMapper
	Store        GraphLoader
	Archiver     Archiver
	SnapshotPath string
	HTTPClient   *http.Client
}

func NewPipeline(params NewPipelineParams) *Pipeline {
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Pipeline{
		sources:      params.Sources,
		mapper:       params.Mapper,
		store:        params.Store,
		archiver:     params.Archiver,
		snapshotPath: params.SnapshotPath,
		httpClient:   client,
	}
}

// Busy reports whether a refresh is currently running.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Refresh runs the full ingestion. Returns ErrBusy when another refresh is
// in flight.
func (p *Pipeline) Refresh(ctx context.Context) error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer p.busy.Store(false)

	started := time.Now()
	logger.Info("[Ingest] refresh started", "sources", len(p.sources))

	batches := make([][]normalize.Record, 0, len(p.sources))
	for _, source := range p.sources {
		batch, err := p.collectSource(ctx, source)
		if err != nil {
			return fmt.Errorf("failed to collect source %s: %w", source.Name, err)
		}
		logger.Info("[Ingest] source collected", "source", source.Name, "records", len(batch))
		batches = append(batches, batch)
	}

	merged := normalize.MergeAndFilter(batches...)
	if len(merged) == 0 {
		return fmt.Errorf("refresh produced no records")
	}

	if err := normalize.WriteSnapshot(p.snapshotPath, merged); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	p.archiveSnapshot(ctx)

	if err := p.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure graph schema: %w", err)
	}
	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear graph: %w", err)
	}
	if err := p.store.LoadGrants(ctx, toGrantRecords(merged)); err != nil {
		return fmt.Errorf("failed to load grants: %w", err)
	}

	logger.Info("[Ingest] refresh finished",
		"records", len(merged),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return nil
}

func (p *Pipeline) collectSource(ctx context.Context, source Source) ([]normalize.Record, error) {
	if source.APIURL != "" {
		fetcher := NewAPIFetcher(NewAPIFetcherParams{
			BaseURL:    source.APIURL,
			HTTPClient: p.httpClient,
		})
		records, err := fetcher.FetchAll(ctx, source.Name)
		if err != nil {
			return nil, err
		}
		return p.normalizeRecords(ctx, records), nil
	}

	links, err := p.FindDataLinks(ctx, source.PortalURL)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no data files linked from %s", source.PortalURL)
	}

	var mu sync.Mutex
	records := []normalize.Record{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fileMaxWorkers)

	for _, link := range links {
		group.Go(func() error {
			batch, err := p.ingestFile(groupCtx, source.Name, link)
			if err != nil {
				// a single broken export should not sink the whole source
				logger.Warn("[Ingest] skipping file", "url", link, "error", err)
				return nil
			}
			mu.Lock()
			records = append(records, batch...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, source string, fileURL string) ([]normalize.Record, error) {
	localPath, err := util.RetryWithContext(ctx, downloadRetries, func(ctx context.Context) (string, error) {
		return p.DownloadFile(ctx, fileURL)
	})
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(filepath.Dir(localPath))

	headers, rows, err := p.ReadDataFile(ctx, localPath)
	if err != nil {
		return nil, err
	}

	mapping := p.mapper.MapHeaders(ctx, headers)
	return normalize.NormalizeRows(headers, rows, mapping, source), nil
}

// normalizeRecords maps the raw attribute keys of API records onto the
// canonical fields, the same way the file path maps column headers. The
// source tag is carried through untouched; records whose keys all fail to
// map are dropped.
func (p *Pipeline) normalizeRecords(ctx context.Context, records []normalize.Record) []normalize.Record {
	if len(records) == 0 {
		return records
	}

	headers := []string{}
	for _, field := range normalize.Columns(records) {
		if field != normalize.SourceField {
			headers = append(headers, field)
		}
	}
	mapping := p.mapper.MapHeaders(ctx, headers)

	out := make([]normalize.Record, 0, len(records))
	for _, record := range records {
		mapped := normalize.Record{}
		hasValue := false

		for key, value := range record {
			if key == normalize.SourceField {
				continue
			}
			field := mapping[key]
			if field == "" || field == normalize.Unmapped {
				continue
			}

			value = strings.TrimSpace(value)
			if value != "" {
				hasValue = true
			}
			if existing, exists := mapped[field]; !exists || existing == "" && value != "" {
				mapped[field] = value
			}
		}

		if !hasValue {
			continue
		}
		mapped[normalize.SourceField] = record[normalize.SourceField]
		out = append(out, mapped)
	}
	return out
}

// archiveSnapshot uploads the fresh snapshot. Archiving is best-effort: the
// local snapshot is already the source of truth for recovery.
func (p *Pipeline) archiveSnapshot(ctx context.Context) {
	if p.archiver == nil {
		return
	}

	f, err := os.Open(p.snapshotPath)
	if err != nil {
		logger.Warn("[Ingest] failed to open snapshot for archive", "error", err)
		return
	}
	defer f.Close()

	key := fmt.Sprintf("snapshots/%s-%s",
		time.Now().UTC().Format("2006-01-02T15-04-05"),
		filepath.Base(p.snapshotPath),
	)
	if err := p.archiver.ArchiveSnapshot(ctx, key, f); err != nil {
		logger.Warn("[Ingest] snapshot archive failed", "key", key, "error", err)
		return
	}
	logger.Info("[Ingest] snapshot archived", "key", key)
}

func toGrantRecords(records []normalize.Record) []graph.GrantRecord {
	out := make([]graph.GrantRecord, 0, len(records))
	for _, record := range records {
		out = append(out, graph.GrantRecord(record))
	}
	return out
}
