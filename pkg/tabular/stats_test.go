package tabular

import (
	"math"
	"strings"
	"testing"
)

func parseCSV(t *testing.T, raw string) *Table {
	t.Helper()

	table, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	return table
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// 偶数长度的中位数取下中位：[1,2,3,4] → 2，不做插值.
func TestNumericMedianLowerMiddle(t *testing.T) {
	table := parseCSV(t, "v\n1\n2\n3\n4\n")

	infos, _ := Profile(table)
	if infos[0].Numeric == nil {
		t.Fatal("expected numeric stats")
	}

	if got := infos[0].Numeric.Median; !floatEq(got, 2) {
		t.Fatalf("median = %v, want 2 (lower middle)", got)
	}
}

func TestNumericStatsBasics(t *testing.T) {
	table := parseCSV(t, "v\n10\n20\n30\n40\n50\n")

	infos, _ := Profile(table)
	stats := infos[0].Numeric

	if stats == nil {
		t.Fatal("expected numeric stats")
	}

	if !floatEq(stats.Min, 10) || !floatEq(stats.Max, 50) {
		t.Errorf("min/max = %v/%v, want 10/50", stats.Min, stats.Max)
	}

	if !floatEq(stats.Mean, 30) {
		t.Errorf("mean = %v, want 30", stats.Mean)
	}

	if !floatEq(stats.Median, 30) {
		t.Errorf("median = %v, want 30", stats.Median)
	}
}

// 整列为空时类型为 unknown，缺失率 100%.
func TestEmptyColumnProfile(t *testing.T) {
	table := parseCSV(t, "a,b\n1,\n2,\n3,\n")

	infos, _ := Profile(table)

	b := infos[1]
	if b.Type != TypeUnknown {
		t.Errorf("type = %s, want unknown", b.Type)
	}

	if b.NullCount != 3 || !floatEq(b.NullPercentage, 100) {
		t.Errorf("null_count/pct = %d/%v, want 3/100", b.NullCount, b.NullPercentage)
	}
}

// missingValues 是整表空单元格总数，null_percentage 按列行数计算.
func TestMissingValuesTotals(t *testing.T) {
	raw := "age,name,city\n" +
		"21,x,p\n" +
		",y,q\n" +
		"33,z,r\n" +
		"44,w,s\n" +
		",v,t\n" +
		"52,u,m\n" +
		"18,o,n\n" +
		"29,i,j\n" +
		"60,e,k\n" +
		"37,h,l\n"

	table := parseCSV(t, raw)

	infos, summary := Profile(table)

	if summary.Rows != 10 || summary.Columns != 3 {
		t.Fatalf("summary rows/columns = %d/%d, want 10/3", summary.Rows, summary.Columns)
	}

	if summary.MissingValues != 2 {
		t.Errorf("missingValues = %d, want 2", summary.MissingValues)
	}

	age := infos[0]
	if age.Type != TypeNumeric {
		t.Errorf("age type = %s, want numeric", age.Type)
	}

	if age.NullCount != 2 || !floatEq(age.NullPercentage, 20) {
		t.Errorf("age null_count/pct = %d/%v, want 2/20", age.NullCount, age.NullPercentage)
	}
}

func TestSampleValuesFirstFive(t *testing.T) {
	table := parseCSV(t, "v\na\nb\n\nc\nd\ne\nf\ng\n")

	infos, _ := Profile(table)

	got := infos[0].SampleValues
	want := []string{"a", "b", "c", "d", "e"}

	if len(got) != len(want) {
		t.Fatalf("sample_values = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample_values = %v, want %v", got, want)
		}
	}
}

func TestUniqueCount(t *testing.T) {
	table := parseCSV(t, "v\nred\ngreen\nred\nblue\nred\n")

	infos, _ := Profile(table)

	if infos[0].UniqueCount != 3 {
		t.Errorf("unique_count = %d, want 3", infos[0].UniqueCount)
	}
}

// 列顺序在画像结果里保持与表头一致.
func TestProfilePreservesColumnOrder(t *testing.T) {
	table := parseCSV(t, "zeta,alpha,mid\n1,2,3\n")

	infos, _ := Profile(table)

	want := []string{"zeta", "alpha", "mid"}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Fatalf("column order %v broken at %d: got %s", want, i, info.Name)
		}
	}
}
