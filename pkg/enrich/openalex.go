package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

const openAlexBaseURL = "https://api.openalex.org/works"

// Work is a published output from OpenAlex.
type Work struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Year       int      `json:"year"`
	DOI        string   `json:"doi,omitempty"`
	Authors    []string `json:"authors"`
	Abstract   string   `json:"abstract,omitempty"`
	CitedBy    int      `json:"cited_by"`
	SourceName string   `json:"source_name,omitempty"`
}

// OpenAlexClient looks up bibliographic records for grants and researchers.
type OpenAlexClient struct {
	mailto     string
	httpClient *http.Client
}

// NewOpenAlexClient creates a client. The mailto address puts requests into
// OpenAlex's polite pool; empty is allowed.
func NewOpenAlexClient(mailto string) *OpenAlexClient {
	return &OpenAlexClient{
		mailto: mailto,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// FindByGrant locates works for a grant by trying increasingly loose
// strategies: the award id scoped to the investigator, the award id alone,
// then a title search filtered by investigator surname and year.
func (c *OpenAlexClient) FindByGrant(
	ctx context.Context,
	awardID string,
	investigator string,
	title string,
	year int,
	limit int,
) ([]Work, error) {
	if limit <= 0 {
		limit = 5
	}

	surname := familyName(investigator)

	if awardID != "" && surname != "" {
		works, err := c.query(ctx, url.Values{
			"filter":   []string{"grants.award_id:" + awardID + ",raw_author_name.search:" + surname},
			"per-page": []string{strconv.Itoa(limit)},
		})
		if err == nil && len(works) > 0 {
			return works, nil
		}
	}

	if awardID != "" {
		works, err := c.query(ctx, url.Values{
			"filter":   []string{"grants.award_id:" + awardID},
			"per-page": []string{strconv.Itoa(limit)},
		})
		if err == nil && len(works) > 0 {
			return works, nil
		}
	}

	if title == "" {
		return nil, nil
	}

	params := url.Values{
		"search":   []string{title},
		"per-page": []string{strconv.Itoa(limit * 3)},
	}
	works, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	return filterWorks(works, surname, year, limit), nil
}

// SearchByAuthor returns recent works for a researcher name.
func (c *OpenAlexClient) SearchByAuthor(ctx context.Context, name string, limit int) ([]Work, error) {
	if limit <= 0 {
		limit = 5
	}
	surname := familyName(name)
	if surname == "" {
		return nil, nil
	}

	return c.query(ctx, url.Values{
		"filter":   []string{"raw_author_name.search:" + name},
		"sort":     []string{"publication_year:desc"},
		"per-page": []string{strconv.Itoa(limit)},
	})
}

func (c *OpenAlexClient) query(ctx context.Context, params url.Values) ([]Work, error) {
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openalex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openalex returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
			DOI         string `json:"doi"`
			Year        int    `json:"publication_year"`
			CitedBy     int    `json:"cited_by_count"`
			Authorships []struct {
				Author struct {
					DisplayName string `json:"display_name"`
				} `json:"author"`
			} `json:"authorships"`
			AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
			PrimaryLocation       struct {
				Source struct {
					DisplayName string `json:"display_name"`
				} `json:"source"`
			} `json:"primary_location"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode openalex response: %w", err)
	}

	works := make([]Work, 0, len(payload.Results))
	for _, r := range payload.Results {
		authors := make([]string, 0, len(r.Authorships))
		for _, a := range r.Authorships {
			authors = append(authors, a.Author.DisplayName)
		}
		works = append(works, Work{
			ID:         r.ID,
			Title:      r.DisplayName,
			Year:       r.Year,
			DOI:        r.DOI,
			Authors:    authors,
			Abstract:   ReconstructAbstract(r.AbstractInvertedIndex),
			CitedBy:    r.CitedBy,
			SourceName: r.PrimaryLocation.Source.DisplayName,
		})
	}
	logger.Debug("[Enrich] OpenAlex query", "params", params.Encode(), "results", len(works))
	return works, nil
}

// ReconstructAbstract rebuilds abstract text from OpenAlex's inverted index
// (word -> positions).
func ReconstructAbstract(inverted map[string][]int) string {
	if len(inverted) == 0 {
		return ""
	}

	type positioned struct {
		pos  int
		word string
	}
	words := []positioned{}
	for word, positions := range inverted {
		for _, pos := range positions {
			words = append(words, positioned{pos: pos, word: word})
		}
	}
	sort.Slice(words, func(i, j int) bool { return words[i].pos < words[j].pos })

	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.word
	}
	return strings.Join(parts, " ")
}

// FormatCitation renders a work as a compact one-line citation.
func FormatCitation(w Work) string {
	authors := "Unknown authors"
	if len(w.Authors) > 0 {
		if len(w.Authors) > 3 {
			authors = strings.Join(w.Authors[:3], ", ") + " et al."
		} else {
			authors = strings.Join(w.Authors, ", ")
		}
	}

	citation := fmt.Sprintf("%s (%d). %s.", authors, w.Year, w.Title)
	if w.SourceName != "" {
		citation += " " + w.SourceName + "."
	}
	if w.DOI != "" {
		citation += " " + w.DOI
	}
	return citation
}

// filterWorks keeps works whose author list contains the surname and whose
// year is within one year of the grant start, up to limit.
func filterWorks(works []Work, surname string, year int, limit int) []Work {
	kept := make([]Work, 0, limit)
	for _, w := range works {
		if surname != "" && !hasAuthorSurname(w.Authors, surname) {
			continue
		}
		if year > 0 && w.Year > 0 && (w.Year < year-1) {
			continue
		}
		kept = append(kept, w)
		if len(kept) == limit {
			break
		}
	}
	return kept
}

func hasAuthorSurname(authors []string, surname string) bool {
	lower := strings.ToLower(surname)
	for _, author := range authors {
		if strings.Contains(strings.ToLower(author), lower) {
			return true
		}
	}
	return false
}

// familyName extracts the family name from "Given Family" or "Family, Given".
func familyName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if idx := strings.Index(name, ","); idx >= 0 {
		return strings.TrimSpace(name[:idx])
	}
	fields := strings.Fields(name)
	return fields[len(fields)-1]
}
