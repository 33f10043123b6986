// Package scraper implements vacancy fetching and extraction from hh.ru
// search result pages.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

const (
	searchBaseURL = "https://hh.ru/search/vacancy"
	httpTimeout   = 15 * time.Second
	maxAttempts   = 5

	// hh.ru rejects requests without a browser-looking User-Agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/76.0.3809.100 Safari/537.36"
)

// Fetcher retrieves all search result pages for one configured query.
type Fetcher struct {
	area         int
	searchPeriod int
	searchText   string
	refine       *regexp.Regexp
	client       *http.Client
	progress     bool
}

// NewFetcher constructs a Fetcher with a shared HTTP client. searchRegex
// refines results by vacancy title (case-insensitive); empty means no
// refinement. showProgress renders a page progress bar on stderr.
func NewFetcher(area, searchPeriod int, searchText, searchRegex string, showProgress bool) (*Fetcher, error) {
	var refine *regexp.Regexp
	if searchRegex != "" {
		var err error
		refine, err = regexp.Compile("(?i)" + searchRegex)
		if err != nil {
			return nil, fmt.Errorf("compile search regex %q: %w", searchRegex, err)
		}
	}
	return &Fetcher{
		area:         area,
		searchPeriod: searchPeriod,
		searchText:   searchText,
		refine:       refine,
		client:       &http.Client{Timeout: httpTimeout},
		progress:     showProgress,
	}, nil
}

// Fetch walks every search result page and returns the assembled run.
// Listings come back newest publication date first.
func (f *Fetcher) Fetch(ctx context.Context) (*model.Run, error) {
	started := time.Now()
	log.Printf("[fetcher] Looking for %q vacancies on hh.ru", f.searchText)

	firstPage, err := f.getWithBackoff(ctx, f.pageURL(0))
	if err != nil {
		return nil, fmt.Errorf("start page: %w", err)
	}

	pages, err := PageCount(bytes.NewReader(firstPage))
	if err != nil {
		return nil, err
	}
	log.Printf("[fetcher] Found %d page(s) of %q results", pages, f.searchText)

	var bar *pb.ProgressBar
	if f.progress {
		bar = pb.StartNew(pages)
		defer bar.Finish()
	}

	var listings []model.Listing
	for page := 0; page < pages; page++ {
		body := firstPage
		if page > 0 {
			body, err = f.getWithBackoff(ctx, f.pageURL(page))
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", page, err)
			}
		}
		pageListings, err := ExtractListings(bytes.NewReader(body), f.refine, started)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		listings = append(listings, pageListings...)
		if bar != nil {
			bar.Increment()
		}
	}

	sortByDateDesc(listings)

	duration := time.Since(started)
	log.Printf("[fetcher] Found %d vacancies in %.2f seconds", len(listings), duration.Seconds())

	return &model.Run{
		Date:          started,
		ParseDuration: duration,
		SearchText:    f.searchText,
		Listings:      listings,
	}, nil
}

func (f *Fetcher) pageURL(page int) string {
	params := url.Values{}
	params.Set("search_period", strconv.Itoa(f.searchPeriod))
	params.Set("clusters", "true")
	params.Set("area", strconv.Itoa(f.area))
	params.Set("text", f.searchText)
	params.Set("enable_snippets", "true")
	params.Set("page", strconv.Itoa(page))
	return searchBaseURL + "?" + params.Encode()
}

// getWithBackoff retries 403, 500 and 503 responses with exponential delays
// (2^n seconds plus jitter, up to maxAttempts). Any other non-200 status
// fails immediately.
func (f *Fetcher) getWithBackoff(ctx context.Context, reqURL string) ([]byte, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http GET: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusForbidden, http.StatusInternalServerError, http.StatusServiceUnavailable:
			delay := time.Duration(1<<attempt)*time.Second + time.Duration(rand.Int63n(int64(time.Second)))
			log.Printf("[fetcher] HTTP %d from %s — retrying in %s (attempt %d/%d)",
				resp.StatusCode, reqURL, delay.Round(time.Millisecond), attempt+1, maxAttempts)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		default:
			return nil, fmt.Errorf("hh.ru returned %d for %s", resp.StatusCode, reqURL)
		}
	}
	return nil, fmt.Errorf("request %s failed in %d attempts", reqURL, maxAttempts)
}

func sortByDateDesc(listings []model.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].PublishedAt.After(listings[j].PublishedAt)
	})
}
