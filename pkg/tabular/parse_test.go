package tabular

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	table := parseCSV(t, "name,age\nalice,30\nbob,25\n")

	if table.RowCount() != 2 || table.ColumnCount() != 2 {
		t.Fatalf("rows/columns = %d/%d, want 2/2", table.RowCount(), table.ColumnCount())
	}

	ages := table.ColumnValues("age")
	if len(ages) != 2 || ages[0] != "30" || ages[1] != "25" {
		t.Fatalf("ColumnValues(age) = %v", ages)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	table := parseCSV(t, "a\n1\n\n2\n\n")

	if table.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", table.RowCount())
	}
}

// 字段数不一致的行报告 1-based 行号.
func TestParseFieldCountMismatch(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b\n1,2\n3\n4,5\n"))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	if len(pe.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(pe.Errors))
	}

	if pe.Errors[0].Row != 3 {
		t.Errorf("row = %d, want 3", pe.Errors[0].Row)
	}
}

func TestParseBareQuote(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b\n\"unterminated,2\n"))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError for empty file, got %v", err)
	}
}

func TestPreviewDynamicTyping(t *testing.T) {
	table := parseCSV(t, "name,score,note\nalice,91.5,\nbob,80,solid\n")

	preview := table.Preview(100)
	if len(preview) != 2 {
		t.Fatalf("preview rows = %d, want 2", len(preview))
	}

	if v, ok := preview[0]["score"].(float64); !ok || v != 91.5 {
		t.Errorf("score = %v, want float64 91.5", preview[0]["score"])
	}

	if preview[0]["note"] != nil {
		t.Errorf("empty cell = %v, want nil", preview[0]["note"])
	}

	if preview[1]["name"] != "bob" {
		t.Errorf("name = %v, want bob", preview[1]["name"])
	}
}

func TestPreviewCapped(t *testing.T) {
	var sb strings.Builder

	sb.WriteString("v\n")
	for range 150 {
		sb.WriteString("1\n")
	}

	table := parseCSV(t, sb.String())

	if got := len(table.Preview(100)); got != 100 {
		t.Fatalf("preview rows = %d, want 100", got)
	}
}
