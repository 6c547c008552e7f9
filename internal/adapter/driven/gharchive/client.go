// Package gharchive implements the BulkEventLogProvider port over the public
// GH Archive hourly dumps.
package gharchive

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/klauspost/compress/gzip"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
	"github.com/ericfisherdev/repotrend/internal/retry"
)

// DefaultBaseURL is the public GH Archive host.
const DefaultBaseURL = "https://data.gharchive.org"

// Compile-time interface satisfaction check.
var _ driven.BulkEventLogProvider = (*Client)(nil)

// Client downloads hour files and reduces them to star and commit events.
type Client struct {
	http    *http.Client
	baseURL string
	retry   retry.Policy
}

// NewClient creates a Client. A nil httpClient uses a client with a
// generous timeout since hour files run to hundreds of megabytes.
func NewClient(httpClient *http.Client, baseURL string, policy retry.Policy) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   policy,
	}
}

// HourURL returns the address of one hour file. Hours are not zero-padded.
func (c *Client) HourURL(day time.Time, hour int) string {
	return fmt.Sprintf("%s/%s-%d.json.gz", c.baseURL, model.FormatDay(day), hour)
}

// Fetch downloads every requested hour of day. Any hour that cannot be
// obtained fails the whole day with driven.ErrSourceUnavailable.
func (c *Client) Fetch(ctx context.Context, day time.Time, hours []int) ([]model.ArchiveEvent, error) {
	var events []model.ArchiveEvent
	for _, h := range hours {
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("hour %d out of range: %w", h, driven.ErrSourceUnavailable)
		}

		start := time.Now()
		hourEvents, err := c.fetchHour(ctx, day, h)
		if err != nil {
			return nil, err
		}
		slog.Debug("archive hour fetched",
			"day", model.FormatDay(day),
			"hour", h,
			"events", len(hourEvents),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		events = append(events, hourEvents...)
	}
	return events, nil
}

// errHourMissing marks an hour file the archive does not have.
var errHourMissing = errors.New("hour file missing")

func (c *Client) fetchHour(ctx context.Context, day time.Time, hour int) ([]model.ArchiveEvent, error) {
	url := c.HourURL(day, hour)

	var events []model.ArchiveEvent
	err := c.retry.Do(ctx, "fetch "+url, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return retry.Permanent(errHourMissing)
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return retry.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		events, err = decodeHour(resp.Body, hour)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w: %w", url, driven.ErrSourceUnavailable, err)
	}
	return events, nil
}

// decodeHour reads one gzipped newline-delimited hour file. Lines that are
// not valid event records are skipped; a broken gzip stream is an error.
func decodeHour(r io.Reader, hour int) ([]model.ArchiveEvent, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	var (
		events  []model.ArchiveEvent
		skipped int
	)
	br := bufio.NewReaderSize(gz, 1<<20)
	for {
		line, readErr := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			ev, ok := parseEvent(line, hour)
			switch {
			case !ok:
				skipped++
			case ev.Type != model.EventTypeOther:
				events = append(events, ev)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read hour %d: %w", hour, readErr)
		}
	}

	if skipped > 0 {
		slog.Debug("skipped malformed archive lines", "hour", hour, "count", skipped)
	}
	return events, nil
}

// parseEvent extracts the type and repository of one record. Only the two
// fields are read, so the rest of the payload is never decoded.
func parseEvent(line []byte, hour int) (model.ArchiveEvent, bool) {
	typ, err := jsonparser.GetString(line, "type")
	if err != nil {
		return model.ArchiveEvent{}, false
	}
	name, err := jsonparser.GetString(line, "repo", "name")
	if err != nil || name == "" {
		return model.ArchiveEvent{}, false
	}
	return model.ArchiveEvent{RepoName: name, Type: eventType(typ), Hour: hour}, true
}

func eventType(archiveType string) model.EventType {
	switch archiveType {
	case "WatchEvent":
		return model.EventTypeStar
	case "PushEvent":
		return model.EventTypeCommit
	default:
		return model.EventTypeOther
	}
}
