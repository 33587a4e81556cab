package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ossgrants/grantgraph/backend/pkg/ai"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/singleflight"
)

// maxPageTokens bounds how much scraped text reaches the summarization
// prompt.
const maxPageTokens = 600

const scrapeUserAgent = "Mozilla/5.0 (compatible; grantgraph/1.0)"

var pageWhitespace = regexp.MustCompile(`\s+`)

// Scraper fetches search hits, extracts the readable main content and asks
// the model for a short relevance note. All failures are per-item and
// fail-soft.
type Scraper struct {
	llm   ai.LanguageModel
	model string

	httpClient *http.Client
	group      singleflight.Group
}

// NewScraper creates a Scraper. A nil llm skips summarization and leaves the
// snippet as the only context.
func NewScraper(llm ai.LanguageModel, model string) *Scraper {
	return &Scraper{
		llm:   llm,
		model: model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// EnrichResults scrapes each result and fills in Summary where possible. The
// input slice is returned with summaries added; items that fail keep their
// snippet and an empty summary.
func (s *Scraper) EnrichResults(ctx context.Context, question string, results []WebResult) []WebResult {
	for i := range results {
		text, err := s.scrape(ctx, results[i].Link)
		if err != nil {
			logger.Debug("[Enrich] Scrape failed", "url", results[i].Link, "err", err)
			continue
		}

		summary, err := s.summarize(ctx, question, results[i].Title, text)
		if err != nil {
			logger.Debug("[Enrich] Page summary failed", "url", results[i].Link, "err", err)
			continue
		}
		results[i].Summary = summary
	}
	return results
}

// scrape fetches a page and extracts its readable text, truncated to the
// token budget. Concurrent requests for the same URL are collapsed.
func (s *Scraper) scrape(ctx context.Context, pageURL string) (string, error) {
	result, err, _ := s.group.Do(pageURL, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", scrapeUserAgent)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode)
		}

		parsed, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse url: %w", err)
		}

		article, err := readability.FromReader(resp.Body, parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}

		var builder strings.Builder
		if err := article.RenderText(&builder); err != nil {
			return nil, fmt.Errorf("failed to render article text: %w", err)
		}

		text := pageWhitespace.ReplaceAllString(builder.String(), " ")
		return strings.TrimSpace(text), nil
	})
	if err != nil {
		return "", err
	}

	return truncateTokens(result.(string), maxPageTokens)
}

func (s *Scraper) summarize(ctx context.Context, question string, title string, text string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("no model configured")
	}

	prompt := fmt.Sprintf(
		"Question: %s\n\nPage title: %s\nPage content: %s\n\n"+
			"In 2-3 sentences, state what this page says that is relevant to the question. "+
			"If nothing is relevant, say so in one sentence.",
		question, title, text,
	)

	opts := []ai.GenerateOption{ai.WithTemperature(0.2)}
	if s.model != "" {
		opts = append(opts, ai.WithModel(s.model))
	}
	return s.llm.GenerateCompletion(ctx, prompt, opts...)
}

// truncateTokens cuts text to at most maxTokens using the o200k encoding.
func truncateTokens(text string, maxTokens int) (string, error) {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return "", err
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	return enc.Decode(tokens[:maxTokens]), nil
}
