package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"macro-picks/internal/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Source is one page or feed to scrape. Item selects a headline block; Title
// and Summary are relative to it. An empty Title uses the item's own text.
type Source struct {
	Name    string
	URL     string
	Item    string
	Title   string
	Summary string
}

// Headline is a single scraped news item.
type Headline struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Scraper handles scraping headlines from multiple sources
type Scraper struct {
	sources   []Source
	timeout   time.Duration
	rateLimit time.Duration
}

// NewScraper creates a scraper over the given sources
func NewScraper(sources []Source, timeout time.Duration) *Scraper {
	return &Scraper{
		sources:   sources,
		timeout:   timeout,
		rateLimit: 2 * time.Second,
	}
}

// Scrape fetches up to limit headlines across all sources, in source order.
// A failing source is logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, limit int) ([]Headline, error) {
	logger.Info(ctx, "Starting news scraping", "sources", len(s.sources), "limit", limit)

	all := []Headline{}
	for i, source := range s.sources {
		if len(all) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return all, err
		}

		headlines, err := s.scrapeSource(ctx, source, limit-len(all))
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name)
			continue
		}
		all = append(all, headlines...)

		// Rate limiting between sources
		if i < len(s.sources)-1 && s.rateLimit > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(s.rateLimit):
			}
		}
	}

	logger.Info(ctx, "News scraping completed", "headlines", len(all))
	return all, nil
}

// scrapeSource scrapes headlines from a single source. The body is parsed
// with goquery directly so RSS feeds and HTML pages go through the same path.
func (s *Scraper) scrapeSource(ctx context.Context, source Source, limit int) ([]Headline, error) {
	headlines := []Headline{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.URL)),
		colly.MaxDepth(1),
		colly.Async(false),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	var parseErr error
	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			parseErr = fmt.Errorf("parse %s: %w", r.Request.URL, err)
			return
		}
		doc.Find(source.Item).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if len(headlines) >= limit {
				return false
			}
			h, ok := extractHeadline(sel, source)
			if !ok {
				return true
			}
			if h.URL != "" {
				h.URL = r.Request.AbsoluteURL(h.URL)
			}
			headlines = append(headlines, h)
			return true
		})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("http %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(source.URL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", source.URL, err)
	}
	c.Wait()

	if visitErr != nil {
		return nil, visitErr
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return headlines, nil
}

func extractHeadline(sel *goquery.Selection, source Source) (Headline, bool) {
	titleSel := sel
	if source.Title != "" {
		titleSel = sel.Find(source.Title).First()
	}
	title := collapseSpace(titleSel.Text())
	if title == "" {
		return Headline{}, false
	}

	var summary string
	if source.Summary != "" {
		summary = FlattenHTML(sel.Find(source.Summary).First().Text())
	}

	link, ok := titleSel.Attr("href")
	if !ok {
		link = sel.Find("a[href]").First().AttrOr("href", "")
	}

	return Headline{
		Source:  source.Name,
		Title:   title,
		Summary: summary,
		URL:     strings.TrimSpace(link),
	}, true
}

// FlattenHTML turns an HTML fragment, such as an RSS description, into
// single-spaced plain text.
func FlattenHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
