// Package trending implements the LiveTrendingProvider port by scraping the
// public GitHub trending page.
package trending

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
	"github.com/ericfisherdev/repotrend/internal/retry"
)

// DefaultURL is the daily trending listing.
const DefaultURL = "https://github.com/trending?since=daily"

const userAgent = "repotrend/1.0 (+https://github.com/ericfisherdev/repotrend)"

// Compile-time interface satisfaction check.
var _ driven.LiveTrendingProvider = (*Scraper)(nil)

// Scraper fetches and parses the trending listing.
type Scraper struct {
	http  *http.Client
	url   string
	retry retry.Policy
	now   func() time.Time
}

// NewScraper creates a Scraper for pageURL. A nil httpClient uses a 30s
// timeout client.
func NewScraper(httpClient *http.Client, pageURL string, policy retry.Policy) *Scraper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if pageURL == "" {
		pageURL = DefaultURL
	}
	return &Scraper{http: httpClient, url: pageURL, retry: policy, now: time.Now}
}

// Fetch returns the listing as currently published. The page only ever
// shows the present, so a day other than today is logged and still answered
// with today's listing.
func (s *Scraper) Fetch(ctx context.Context, day time.Time) ([]model.TrendingEntry, error) {
	if today := model.Day(s.now()); !model.Day(day).Equal(today) {
		slog.Warn("trending page only reflects today",
			"requested", model.FormatDay(day),
			"today", model.FormatDay(today),
		)
	}

	var entries []model.TrendingEntry
	err := s.retry.Do(ctx, "fetch trending page", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html")

		resp, err := s.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return retry.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		entries, err = ParsePage(resp.Body)
		if err != nil {
			return retry.Permanent(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("trending %s: %w: %w", s.url, driven.ErrSourceUnavailable, err)
	}

	slog.Info("trending page fetched", "entries", len(entries))
	return entries, nil
}

// ParsePage extracts every repository row from a trending page. Rows
// without an owner/name link are skipped.
func ParsePage(r io.Reader) ([]model.TrendingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse trending html: %w", err)
	}

	var entries []model.TrendingEntry
	doc.Find("article.Box-row").Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Find("h2 a[href]").First().Attr("href")
		if !ok {
			return
		}
		owner, name, ok := strings.Cut(strings.Trim(strings.TrimSpace(href), "/"), "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return
		}

		entries = append(entries, model.TrendingEntry{
			Owner:       owner,
			Name:        name,
			Description: collapse(row.Find("p").First().Text()),
			Language:    collapse(row.Find(`span[itemprop="programmingLanguage"]`).First().Text()),
			Stars:       ParseCount(iconLinkText(row, `a[href$="/stargazers"]`, "svg.octicon-star")),
			Forks:       ParseCount(iconLinkText(row, `a[href$="/forks"]`, "svg.octicon-repo-forked")),
			StarsToday:  ParseCount(row.Find("span.d-inline-block.float-sm-right").First().Text()),
		})
	})

	return entries, nil
}

// iconLinkText returns the text of the counter link, falling back to the
// parent of its octicon when the link selector does not match.
func iconLinkText(row *goquery.Selection, linkSel, iconSel string) string {
	if link := row.Find(linkSel).First(); link.Length() > 0 {
		return link.Text()
	}
	return row.Find(iconSel).First().Parent().Text()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseCount reads the leading number of a counter such as "1,234",
// "12.5k" or "87 stars today". Unparseable text counts as zero.
func ParseCount(s string) int {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return 0
	}
	num := strings.ReplaceAll(fields[0], ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(num, "k"):
		mult, num = 1e3, strings.TrimSuffix(num, "k")
	case strings.HasSuffix(num, "m"):
		mult, num = 1e6, strings.TrimSuffix(num, "m")
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f * mult)
}
