// Package scraper fetches documentation pages and turns them into a flat
// corpus artifact: one normalized line of body text per page, in input
// order. A failed page is skipped and logged, never fatal.
package scraper

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL hosts the Apache JMeter user manual.
	DefaultBaseURL = "https://jmeter.apache.org"

	defaultTimeout = 30 * time.Second
)

// DefaultDocumentationPaths lists the JMeter user manual pages, in the
// order they should appear in the corpus.
func DefaultDocumentationPaths() []string {
	return []string{
		"/usermanual/get-started.html",
		"/usermanual/build-test-plan.html",
		"/usermanual/test_plan.html",
		"/usermanual/build-web-test-plan.html",
		"/usermanual/build-adv-web-test-plan.html",
		"/usermanual/build-db-test-plan.html",
		"/usermanual/build-ftp-test-plan.html",
		"/usermanual/build-ldap-test-plan.html",
		"/usermanual/build-ldapext-test-plan.html",
		"/usermanual/build-ws-test-plan.html",
		"/usermanual/build-jms-point-to-point-test-plan.html",
		"/usermanual/build-jms-topic-test-plan.html",
		"/usermanual/build-programmatic-test-plan.html",
		"/usermanual/listeners.html",
		"/usermanual/remote-test.html",
		"/usermanual/generating-dashboard.html",
		"/usermanual/realtime-results.html",
		"/usermanual/best-practices.html",
		"/usermanual/boss.html",
		"/usermanual/component_reference.html",
		"/usermanual/properties_reference.html",
		"/usermanual/functions.html",
		"/usermanual/regular_expressions.html",
		"/usermanual/hints_and_tips.html",
		"/usermanual/glossary.html",
		"/usermanual/curl.html",
		"/usermanual/history_future.html",
	}
}

// Pre-compiled expressions for HTML stripping and normalization.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	nonPrintable = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\xff]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Scraper fetches pages sequentially over HTTP.
type Scraper struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// New creates a Scraper for the given documentation site.
func New(baseURL string, logger *zap.Logger) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// ScrapeAll fetches every relative path in order and returns the
// normalized page texts. Pages that fail to fetch or parse contribute
// nothing; the batch always completes.
func (s *Scraper) ScrapeAll(relativePaths []string) []string {
	var pages []string
	for _, relative := range relativePaths {
		url := s.baseURL + relative
		text, err := s.scrapePage(url)
		if err != nil {
			s.logger.Warn("Skipping page",
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		pages = append(pages, text)
		s.logger.Info("Scraped page",
			zap.String("url", url),
			zap.Int("length", len(text)))
	}
	return pages
}

func (s *Scraper) scrapePage(url string) (string, error) {
	resp, err := s.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	text := NormalizePage(string(body))
	if text == "" {
		return "", fmt.Errorf("page produced no text")
	}
	return text, nil
}

// NormalizePage strips markup, control and non-ASCII characters from raw
// HTML and collapses all whitespace runs to single spaces.
func NormalizePage(raw string) string {
	text := scriptTag.ReplaceAllString(raw, "")
	text = styleTag.ReplaceAllString(text, "")
	text = headTag.ReplaceAllString(text, "")
	text = htmlComments.ReplaceAllString(text, "")
	text = allTags.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = nonPrintable.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// WriteCorpus writes one page per line, preserving page order.
func WriteCorpus(filename string, pages []string) error {
	var b strings.Builder
	for _, page := range pages {
		b.WriteString(strings.TrimRight(page, "\n"))
		b.WriteString("\n")
	}
	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write corpus file: %w", err)
	}
	return nil
}
