package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// dataFileExtensions are the downloadable formats a funder portal links to.
var dataFileExtensions = []string{".csv", ".xlsx", ".xls"}

// FindDataLinks fetches a portal page and returns absolute URLs of linked
// data files, in document order and deduplicated.
func (p *Pipeline) FindDataLinks(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portal page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal page returned status %d", resp.StatusCode)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portal url: %w", err)
	}

	return extractDataLinks(resp.Body, base)
}

// extractDataLinks walks the parsed document for anchors pointing at data
// files, resolving relative hrefs against base.
func extractDataLinks(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portal html: %w", err)
	}

	links := []string{}
	seen := map[string]bool{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if resolved := resolveDataLink(base, attr.Val); resolved != "" && !seen[resolved] {
					seen[resolved] = true
					links = append(links, resolved)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return links, nil
}

func resolveDataLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)

	path := strings.ToLower(resolved.Path)
	for _, ext := range dataFileExtensions {
		if strings.HasSuffix(path, ext) {
			return resolved.String()
		}
	}
	return ""
}
