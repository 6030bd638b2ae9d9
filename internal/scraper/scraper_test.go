package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newDocsServer(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing[r.URL.Path] {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "<html><head><title>x</title></head><body><h1>Page %s</h1><p>content   of\n%s</p><script>var x=1;</script></body></html>",
			r.URL.Path, r.URL.Path)
	}))
}

func TestScrapeAllPreservesOrder(t *testing.T) {
	server := newDocsServer(t, nil)
	defer server.Close()

	paths := []string{"/a.html", "/b.html", "/c.html"}
	s := New(server.URL, zaptest.NewLogger(t))

	pages := s.ScrapeAll(paths)
	if len(pages) != len(paths) {
		t.Fatalf("Expected %d pages, got %d", len(paths), len(pages))
	}
	for i, path := range paths {
		if !strings.Contains(pages[i], "Page "+path) {
			t.Errorf("Page %d does not correspond to %s: %q", i, path, pages[i])
		}
	}
}

func TestScrapeAllSkipsFailedPages(t *testing.T) {
	server := newDocsServer(t, map[string]bool{"/3.html": true})
	defer server.Close()

	paths := []string{"/1.html", "/2.html", "/3.html", "/4.html", "/5.html"}
	s := New(server.URL, zaptest.NewLogger(t))

	pages := s.ScrapeAll(paths)
	if len(pages) != 4 {
		t.Fatalf("Expected 4 pages after one failure, got %d", len(pages))
	}

	corpusPath := filepath.Join(t.TempDir(), "content.txt")
	if err := WriteCorpus(corpusPath, pages); err != nil {
		t.Fatalf("WriteCorpus failed: %v", err)
	}

	data, err := os.ReadFile(corpusPath)
	if err != nil {
		t.Fatalf("Failed to read corpus: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("Expected 4 corpus lines, got %d", len(lines))
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			t.Errorf("Corpus line %d is empty", i)
		}
	}
}

func TestScrapeAllUnreachableServer(t *testing.T) {
	s := New("http://127.0.0.1:1", zaptest.NewLogger(t))
	pages := s.ScrapeAll([]string{"/a.html"})
	if len(pages) != 0 {
		t.Errorf("Expected no pages from unreachable server, got %d", len(pages))
	}
}

func TestNormalizePage(t *testing.T) {
	raw := "<html><head><title>t</title></head><body>Hello &amp; <b>world</b>\n\n  caf\xc3\xa9<script>junk()</script></body></html>"
	got := NormalizePage(raw)

	if strings.Contains(got, "<") || strings.Contains(got, "junk") {
		t.Errorf("Markup survived normalization: %q", got)
	}
	if strings.Contains(got, "\n") || strings.Contains(got, "  ") {
		t.Errorf("Whitespace not collapsed: %q", got)
	}
	if !strings.HasPrefix(got, "Hello & world") {
		t.Errorf("Unexpected normalized text: %q", got)
	}
	for _, r := range got {
		if r > 0x7e {
			t.Errorf("Non-ASCII character %q survived normalization", r)
		}
	}
}
