package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// WebResult is one search hit, optionally enriched with a relevance summary
// by the Scraper.
type WebResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Summary string `json:"summary,omitempty"`
}

// WebSearcher queries Google Custom Search first and falls back to SerpAPI.
// Search is fail-soft: any provider error logs and yields no results, never
// an error, because enrichment must not break the answer pipeline.
type WebSearcher struct {
	googleKey string
	googleCX  string
	serpKey   string

	httpClient *http.Client
}

// NewWebSearcherParams carries the provider credentials. Empty credentials
// disable the respective provider.
type NewWebSearcherParams struct {
	GoogleAPIKey   string
	GoogleEngineID string
	SerpAPIKey     string
}

// NewWebSearcher creates a searcher with a bounded request timeout.
func NewWebSearcher(params NewWebSearcherParams) *WebSearcher {
	return &WebSearcher{
		googleKey: params.GoogleAPIKey,
		googleCX:  params.GoogleEngineID,
		serpKey:   params.SerpAPIKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Search returns up to limit results for the query, or nil when every
// configured provider fails.
func (w *WebSearcher) Search(ctx context.Context, query string, limit int) []WebResult {
	if limit <= 0 {
		limit = 3
	}

	if w.googleKey != "" && w.googleCX != "" {
		results, err := w.searchGoogle(ctx, query, limit)
		if err == nil && len(results) > 0 {
			return results
		}
		if err != nil {
			logger.Warn("[Enrich] Google search failed, trying SerpAPI", "err", err)
		}
	}

	if w.serpKey != "" {
		results, err := w.searchSerpAPI(ctx, query, limit)
		if err != nil {
			logger.Warn("[Enrich] SerpAPI search failed", "err", err)
			return nil
		}
		return results
	}

	return nil
}

func (w *WebSearcher) searchGoogle(ctx context.Context, query string, limit int) ([]WebResult, error) {
	params := url.Values{}
	params.Set("key", w.googleKey)
	params.Set("cx", w.googleCX)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := w.getJSON(ctx, "https://www.googleapis.com/customsearch/v1?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	results := make([]WebResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, WebResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

func (w *WebSearcher) searchSerpAPI(ctx context.Context, query string, limit int) ([]WebResult, error) {
	params := url.Values{}
	params.Set("api_key", w.serpKey)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("engine", "google")

	var payload struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := w.getJSON(ctx, "https://serpapi.com/search.json?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	results := make([]WebResult, 0, limit)
	for _, item := range payload.OrganicResults {
		if len(results) == limit {
			break
		}
		results = append(results, WebResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

func (w *WebSearcher) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search request returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
