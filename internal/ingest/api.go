package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ossgrants/grantgraph/backend/internal/util"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
	"github.com/ossgrants/grantgraph/backend/pkg/normalize"
)

const (
	apiPageSize          = 1000
	apiMaxWorkers        = 10
	apiFetchRetries      = 3
	pageFailureThreshold = 0.10
)

// apiEnvelope is the JSON:API-style paging envelope grant registries expose.
type apiEnvelope struct {
	Data []apiItem `json:"data"`
	Meta apiMeta   `json:"meta"`
}

type apiItem struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

type apiMeta struct {
	TotalPages int `json:"total-pages"`
}

// APIFetcher pulls a full grant dataset from a paginated registry API.
type APIFetcher struct {
	baseURL    string
	httpClient *http.Client
}

type NewAPIFetcherParams struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPIFetcher(params NewAPIFetcherParams) *APIFetcher {
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &APIFetcher{
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		httpClient: client,
	}
}

// FetchAll downloads every page concurrently and returns flattened records.
// The fetch aborts with a BatchError when more than 10% of pages fail; a
// partial dataset would silently shrink the graph on reload.
func (f *APIFetcher) FetchAll(ctx context.Context, source string) ([]normalize.Record, error) {
	first, err := f.fetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	totalPages := first.Meta.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	logger.Info("[Ingest] fetching registry pages", "source", source, "pages", totalPages)

	var mu sync.Mutex
	records := flattenItems(first.Data, source)
	failed := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(apiMaxWorkers)

	for page := 2; page <= totalPages; page++ {
		group.Go(func() error {
			var envelope *apiEnvelope
			err := util.RetryErrWithContext(groupCtx, apiFetchRetries, func(ctx context.Context) error {
				var fetchErr error
				envelope, fetchErr = f.fetchPage(ctx, page)
				return fetchErr
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				logger.Warn("[Ingest] page fetch failed", "page", page, "error", err)
				if float64(failed)/float64(totalPages) > pageFailureThreshold {
					return &BatchError{Failed: failed, Total: totalPages}
				}
				return nil
			}
			records = append(records, flattenItems(envelope.Data, source)...)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (f *APIFetcher) fetchPage(ctx context.Context, page int) (*apiEnvelope, error) {
	url := fmt.Sprintf("%s?page[number]=%d&page[size]=%d", f.baseURL, page, apiPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page %d returned status %d", page, resp.StatusCode)
	}

	envelope := &apiEnvelope{}
	if err := json.NewDecoder(resp.Body).Decode(envelope); err != nil {
		return nil, fmt.Errorf("failed to decode page %d: %w", page, err)
	}
	return envelope, nil
}

func flattenItems(items []apiItem, source string) []normalize.Record {
	records := make([]normalize.Record, 0, len(items))
	for _, item := range items {
		record := flattenAttributes(item.Attributes)
		if item.ID != "" {
			record["application_id"] = item.ID
		}
		record[normalize.SourceField] = source
		records = append(records, record)
	}
	return records
}

// flattenAttributes lowers one level of nesting into key_subkey columns and
// joins scalar lists so every value is a plain string.
func flattenAttributes(attrs map[string]any) normalize.Record {
	record := normalize.Record{}
	for key, value := range attrs {
		switch typed := value.(type) {
		case map[string]any:
			subKeys := make([]string, 0, len(typed))
			for sub := range typed {
				subKeys = append(subKeys, sub)
			}
			sort.Strings(subKeys)
			for _, sub := range subKeys {
				record[key+"_"+sub] = stringifyValue(typed[sub])
			}
		case []any:
			parts := make([]string, 0, len(typed))
			for _, element := range typed {
				if _, nested := element.(map[string]any); nested {
					continue
				}
				if s := stringifyValue(element); s != "" {
					parts = append(parts, s)
				}
			}
			record[key] = strings.Join(parts, "; ")
		default:
			record[key] = stringifyValue(value)
		}
	}
	return record
}

func stringifyValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
