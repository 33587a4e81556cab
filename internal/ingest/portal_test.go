package ingest

import (
	"net/url"
	"strings"
	"testing"
)

func TestExtractDataLinks(t *testing.T) {
	page := `<html><body>
		<a href="/exports/grants-2023.csv">2023 grants</a>
		<a href="https://files.example.org/grants-2022.XLSX">2022 grants</a>
		<a href="/exports/grants-2023.csv">duplicate</a>
		<a href="/about">about</a>
		<a href="report.pdf">annual report</a>
	</body></html>`

	base, err := url.Parse("https://funder.example.org/data/outcomes")
	if err != nil {
		t.Fatalf("failed to parse base url: %v", err)
	}

	links, err := extractDataLinks(strings.NewReader(page), base)
	if err != nil {
		t.Fatalf("extractDataLinks() error = %v", err)
	}

	want := []string{
		"https://funder.example.org/exports/grants-2023.csv",
		"https://files.example.org/grants-2022.XLSX",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %v", len(want), links)
	}
	for i, link := range want {
		if links[i] != link {
			t.Fatalf("links[%d] = %q, want %q", i, links[i], link)
		}
	}
}

func TestExtractDataLinks_NoMatches(t *testing.T) {
	base, _ := url.Parse("https://funder.example.org/")
	links, err := extractDataLinks(strings.NewReader("<html><body><p>no files</p></body></html>"), base)
	if err != nil {
		t.Fatalf("extractDataLinks() error = %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected no links, got %v", links)
	}
}
