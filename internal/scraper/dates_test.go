package scraper_test

import (
	"errors"
	"testing"
	"time"

	"github.com/d9i2r2t1/hh-parser/internal/engine"
	"github.com/d9i2r2t1/hh-parser/internal/scraper"
)

var now = time.Date(2023, time.May, 15, 12, 0, 0, 0, time.UTC)

// ── ParsePublicationDate — month vocabulary ────────────────────────────────

func TestParsePublicationDate_AllMonths(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"1 января", time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"28 февраля", time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{"8 марта", time.Date(2023, time.March, 8, 0, 0, 0, 0, time.UTC)},
		{"30 апреля", time.Date(2023, time.April, 30, 0, 0, 0, 0, time.UTC)},
		{"12 мая", time.Date(2023, time.May, 12, 0, 0, 0, 0, time.UTC)},
		{"15 июня", time.Date(2022, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"15 июля", time.Date(2022, time.July, 15, 0, 0, 0, 0, time.UTC)},
		{"15 августа", time.Date(2022, time.August, 15, 0, 0, 0, 0, time.UTC)},
		{"15 сентября", time.Date(2022, time.September, 15, 0, 0, 0, 0, time.UTC)},
		{"15 октября", time.Date(2022, time.October, 15, 0, 0, 0, 0, time.UTC)},
		{"15 ноября", time.Date(2022, time.November, 15, 0, 0, 0, 0, time.UTC)},
		{"31 декабря", time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := scraper.ParsePublicationDate(c.raw, now)
		if err != nil {
			t.Errorf("ParsePublicationDate(%q) returned unexpected error: %v", c.raw, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParsePublicationDate(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

// ── ParsePublicationDate — year inference ──────────────────────────────────

func TestParsePublicationDate_FutureDateRollsBackAYear(t *testing.T) {
	// "20 мая" relative to 15 May 2023 must land in 2022.
	got, err := scraper.ParsePublicationDate("20 мая", now)
	if err != nil {
		t.Fatalf("ParsePublicationDate returned unexpected error: %v", err)
	}
	if got.Year() != 2022 {
		t.Errorf("year = %d, want 2022", got.Year())
	}
}

func TestParsePublicationDate_NBSPSeparator(t *testing.T) {
	got, err := scraper.ParsePublicationDate("12 мая", now)
	if err != nil {
		t.Fatalf("ParsePublicationDate returned unexpected error: %v", err)
	}
	if got.Day() != 12 || got.Month() != time.May {
		t.Errorf("ParsePublicationDate = %v, want 12 May", got)
	}
}

// ── ParsePublicationDate — fatal input ─────────────────────────────────────

func TestParsePublicationDate_Unparsable(t *testing.T) {
	for _, raw := range []string{"", "мая", "12", "12 maya", "вчера", "40 мая"} {
		_, err := scraper.ParsePublicationDate(raw, now)
		if !errors.Is(err, engine.ErrFatalInput) {
			t.Errorf("ParsePublicationDate(%q) error = %v, want ErrFatalInput", raw, err)
		}
	}
}
