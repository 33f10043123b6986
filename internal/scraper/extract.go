package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

const (
	// Fallbacks hh.ru-style pages leave implicit.
	companyUnknown    = "Не определено"
	salaryUnspecified = "Не указано"
)

// ExtractListings pulls vacancy records out of one search results page.
// Regular and premium vacancy cards are both collected. Vacancies whose
// title does not match the refining regexp are dropped.
func ExtractListings(body io.Reader, refine *regexp.Regexp, now time.Time) ([]model.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var listings []model.Listing
	var extractErr error

	selector := `div[data-qa="vacancy-serp__vacancy"], div[data-qa="vacancy-serp__vacancy vacancy-serp__vacancy_premium"]`
	doc.Find(selector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		titleLink := card.Find(`a[data-qa="vacancy-serp__vacancy-title"]`).First()
		title := strings.TrimSpace(titleLink.Text())
		if title == "" || (refine != nil && !refine.MatchString(title)) {
			return true
		}

		href, ok := titleLink.Attr("href")
		if !ok || href == "" {
			return true
		}

		company := companyUnknown
		if employer := card.Find(`a[data-qa="vacancy-serp__vacancy-employer"]`).First(); employer.Length() > 0 {
			company = strings.TrimSpace(employer.Text())
		}

		salaryText := salaryUnspecified
		if comp := card.Find(`span[data-qa="vacancy-serp__vacancy-compensation"]`).First(); comp.Length() > 0 {
			salaryText = strings.TrimSpace(comp.Text())
		}

		rawDate := strings.TrimSpace(card.Find("span.vacancy-serp-item__publication-date").First().Text())
		published, err := ParsePublicationDate(rawDate, now)
		if err != nil {
			extractErr = fmt.Errorf("vacancy %s: %w", href, err)
			return false
		}

		listings = append(listings, model.Listing{
			Href:        href,
			Title:       title,
			Company:     company,
			SalaryText:  salaryText,
			PublishedAt: published,
		})
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	return listings, nil
}

// PageCount reads the pager of the first results page and returns the total
// number of result pages, or 1 when no pager is present.
func PageCount(body io.Reader) (int, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return 0, fmt.Errorf("parse page: %w", err)
	}

	last := 1
	doc.Find(`a[data-qa="pager-page"]`).Each(func(_ int, page *goquery.Selection) {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(page.Text()), "%d", &n); err == nil && n > last {
			last = n
		}
	})
	return last, nil
}
