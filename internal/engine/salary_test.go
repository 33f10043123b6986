package engine_test

import (
	"errors"
	"testing"

	"github.com/d9i2r2t1/hh-parser/internal/engine"
	"github.com/d9i2r2t1/hh-parser/internal/model"
)

// ── ParseSalary — recognised forms ─────────────────────────────────────────

func TestParseSalary_KnownForms(t *testing.T) {
	cases := []struct {
		text string
		want model.Salary
	}{
		{"от 100000", model.Salary{Min: 100000, Max: 100000, Kind: model.SalaryLowerBound}},
		{"до 50000", model.Salary{Min: 0, Max: 50000, Kind: model.SalaryUpperBound}},
		{"80000-120000", model.Salary{Min: 80000, Max: 120000, Kind: model.SalaryRange}},
		{"70000", model.Salary{Min: 70000, Max: 70000, Kind: model.SalaryFixed}},
		{"Не указано", model.Salary{Kind: model.SalaryUnspecified}},
	}
	for _, c := range cases {
		got, err := engine.ParseSalary(c.text)
		if err != nil {
			t.Errorf("ParseSalary(%q) returned unexpected error: %v", c.text, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSalary(%q) = %+v, want %+v", c.text, got, c.want)
		}
	}
}

func TestParseSalary_SpecifiedFlag(t *testing.T) {
	got, err := engine.ParseSalary("Не указано")
	if err != nil {
		t.Fatalf("ParseSalary returned unexpected error: %v", err)
	}
	if got.Specified() {
		t.Error("unspecified salary should report Specified() = false")
	}
	if got.Min != 0 || got.Max != 0 {
		t.Errorf("unspecified salary should be 0-0, got %d-%d", got.Min, got.Max)
	}
}

func TestParseSalary_StripsThousandSeparators(t *testing.T) {
	cases := []struct {
		text     string
		min, max int
	}{
		{"от 100 000 руб.", 100000, 100000},
		{"до 1 500 000 руб.", 0, 1500000},
		{"80 000-120 000 руб.", 80000, 120000},
		{"70 000", 70000, 70000},
	}
	for _, c := range cases {
		got, err := engine.ParseSalary(c.text)
		if err != nil {
			t.Errorf("ParseSalary(%q) returned unexpected error: %v", c.text, err)
			continue
		}
		if got.Min != c.min || got.Max != c.max {
			t.Errorf("ParseSalary(%q) = %d-%d, want %d-%d", c.text, got.Min, got.Max, c.min, c.max)
		}
	}
}

func TestParseSalary_CurrencySuffixIgnored(t *testing.T) {
	got, err := engine.ParseSalary("от 100000 руб.")
	if err != nil {
		t.Fatalf("ParseSalary returned unexpected error: %v", err)
	}
	if got.Min != 100000 {
		t.Errorf("ParseSalary min = %d, want 100000", got.Min)
	}
}

// ── ParseSalary — malformed input ──────────────────────────────────────────

func TestParseSalary_Malformed(t *testing.T) {
	malformed := []string{
		"",
		"   ",
		"договорная",
		"от",
		"от зарплаты",
		"до топовой",
		"100000-",
		"-120000",
		"abc-def",
		"100k",
	}
	for _, text := range malformed {
		_, err := engine.ParseSalary(text)
		if err == nil {
			t.Errorf("ParseSalary(%q) expected error, got nil", text)
			continue
		}
		var malErr *engine.MalformedSalaryError
		if !errors.As(err, &malErr) {
			t.Errorf("ParseSalary(%q) error = %v, want *MalformedSalaryError", text, err)
		}
	}
}

func TestParseSalary_ReversedForkIsMalformed(t *testing.T) {
	_, err := engine.ParseSalary("120000-80000")
	var malErr *engine.MalformedSalaryError
	if !errors.As(err, &malErr) {
		t.Errorf("reversed fork should be malformed, got %v", err)
	}
}

// ── Invariant: min ≤ max for every specified salary ────────────────────────

func TestParseSalary_MinNeverExceedsMax(t *testing.T) {
	texts := []string{"от 100000", "до 50000", "80000-120000", "70000", "50000-50000"}
	for _, text := range texts {
		got, err := engine.ParseSalary(text)
		if err != nil {
			t.Fatalf("ParseSalary(%q) returned unexpected error: %v", text, err)
		}
		if got.Specified() && got.Min > got.Max {
			t.Errorf("ParseSalary(%q): min %d > max %d", text, got.Min, got.Max)
		}
	}
}
