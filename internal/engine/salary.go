// Package engine holds the pure run-processing logic: salary normalisation,
// run statistics, ranking and snapshot reconciliation. It performs no I/O —
// the worker feeds it fully materialised inputs and persists its outputs.
package engine

import (
	"strconv"
	"strings"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

// salaryUnspecified is the marker hh.ru renders when a vacancy states no salary.
const salaryUnspecified = "Не указано"

// ParseSalary normalises one vacancy salary text into numeric bounds.
// Recognised forms, tried in order: "от N", "до N", "N-M", the unspecified
// marker, and a fixed "N". NBSP thousand separators are stripped before
// number parsing. Anything else is a *MalformedSalaryError.
func ParseSalary(text string) (model.Salary, error) {
	fields := strings.Fields(stripSeparators(text))
	if len(fields) == 0 {
		return model.Salary{}, &MalformedSalaryError{Text: text}
	}

	switch {
	case fields[0] == "от":
		n, err := parseAmount(fields, 1)
		if err != nil {
			return model.Salary{}, &MalformedSalaryError{Text: text}
		}
		return model.Salary{Min: n, Max: n, Kind: model.SalaryLowerBound}, nil

	case fields[0] == "до":
		n, err := parseAmount(fields, 1)
		if err != nil {
			return model.Salary{}, &MalformedSalaryError{Text: text}
		}
		return model.Salary{Min: 0, Max: n, Kind: model.SalaryUpperBound}, nil

	case strings.Count(fields[0], "-") == 1:
		fork := strings.SplitN(fields[0], "-", 2)
		lo, errLo := strconv.Atoi(fork[0])
		hi, errHi := strconv.Atoi(fork[1])
		// A reversed fork is never silently swapped.
		if errLo != nil || errHi != nil || lo > hi {
			return model.Salary{}, &MalformedSalaryError{Text: text}
		}
		return model.Salary{Min: lo, Max: hi, Kind: model.SalaryRange}, nil

	case strings.TrimSpace(text) == salaryUnspecified:
		return model.Salary{Kind: model.SalaryUnspecified}, nil

	default:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return model.Salary{}, &MalformedSalaryError{Text: text}
		}
		return model.Salary{Min: n, Max: n, Kind: model.SalaryFixed}, nil
	}
}

// stripSeparators removes the non-breaking spaces hh.ru uses as thousand
// separators, so "100 000" collapses to "100000" before tokenising.
func stripSeparators(text string) string {
	return strings.NewReplacer(" ", "", " ", "").Replace(text)
}

func parseAmount(fields []string, i int) (int, error) {
	if len(fields) <= i {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(fields[i])
}
