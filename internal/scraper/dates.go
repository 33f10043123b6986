package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/d9i2r2t1/hh-parser/internal/engine"
)

// hh.ru renders publication dates as "<day> <month name>" in the genitive
// case, with no year.
var monthsGenitive = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

// ParsePublicationDate converts a raw "12 мая" publication date into a
// calendar date. The page carries no year, so the current one is assumed;
// a date that would land in the future belongs to the previous year. An
// unparsable date aborts the run — a silently skipped date would corrupt
// the lifetime of every closure computed from it.
func ParsePublicationDate(raw string, now time.Time) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(raw, " ", " "))
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("%w: publication date %q", engine.ErrFatalInput, raw)
	}

	dayNum, err := strconv.Atoi(fields[0])
	if err != nil || dayNum < 1 || dayNum > 31 {
		return time.Time{}, fmt.Errorf("%w: publication date %q", engine.ErrFatalInput, raw)
	}
	month, ok := monthsGenitive[fields[1]]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: publication date %q", engine.ErrFatalInput, raw)
	}

	date := time.Date(now.Year(), month, dayNum, 0, 0, 0, 0, time.UTC)
	if date.After(now) {
		date = time.Date(now.Year()-1, month, dayNum, 0, 0, 0, 0, time.UTC)
	}
	return date, nil
}
