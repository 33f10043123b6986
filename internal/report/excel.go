// Package report renders the per-run xlsx report of ranked vacancies.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

const (
	sheetName       = "Sheet1"
	headerFillColor = "D6DCE3"
)

var headers = []string{"row", "date", "title", "company", "salary", "href"}

// Writer renders reports into a target folder, creating it when absent.
type Writer struct {
	Folder string
}

// FileName builds the report name from the search text and a timestamp,
// with spaces replaced so the name survives shell quoting and mail clients.
func FileName(searchText string, now time.Time) string {
	name := fmt.Sprintf("%s_%s.xlsx", searchText, now.Format("20060102_150405"))
	return strings.ReplaceAll(name, " ", "_")
}

// Write renders the ranked run into an xlsx file and returns its path.
// The header row gets a grey fill and every column is sized to its longest
// cell, matching the reports the service has always produced.
func (w Writer) Write(run *model.Run, ranked []model.RankedListing) (string, error) {
	if err := os.MkdirAll(w.Folder, 0o755); err != nil {
		return "", fmt.Errorf("create report folder: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	widths := make([]int, len(headers))
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
		widths[col] = len(h)
	}

	for i, r := range ranked {
		values := []string{
			fmt.Sprintf("%d", r.Rank),
			r.PublishedAt.Format("2006-01-02"),
			r.Title,
			r.Company,
			r.SalaryText,
			r.Href,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return "", fmt.Errorf("write row %d: %w", i+1, err)
			}
			if n := len([]rune(v)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if err != nil {
		return "", fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastCol, style); err != nil {
		return "", fmt.Errorf("apply header style: %w", err)
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, float64(width)+2); err != nil {
			return "", fmt.Errorf("set column width: %w", err)
		}
	}

	path := filepath.Join(w.Folder, FileName(run.SearchText, run.Date))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	log.Printf("[report] Report file created: %s", path)
	return path, nil
}
