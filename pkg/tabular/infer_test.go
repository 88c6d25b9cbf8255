package tabular

import "testing"

func TestInferTypeBoolean(t *testing.T) {
	cases := []struct {
		name   string
		values []string
	}{
		{"true/false", []string{"true", "false", "true"}},
		{"yes/no", []string{"yes", "no", "yes", "no"}},
		{"zero/one", []string{"0", "1", "0", "1"}},
		{"mixed case", []string{"True", "FALSE", "true"}},
		{"single value", []string{"true", "true"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferType(tc.values); got != TypeBoolean {
				t.Errorf("InferType(%v) = %s, want boolean", tc.values, got)
			}
		})
	}
}

// 布尔判定优先于数值：只含 "0"/"1" 的列是 boolean 而不是 numeric.
func TestInferTypeBooleanBeatsNumeric(t *testing.T) {
	values := []string{"0", "1", "1", "0", "1"}

	if got := InferType(values); got != TypeBoolean {
		t.Fatalf("InferType(0/1 column) = %s, want boolean", got)
	}
}

func TestInferTypeNumeric(t *testing.T) {
	values := []string{"1", "2.5", "-3", "4e2", "0.001"}

	if got := InferType(values); got != TypeNumeric {
		t.Fatalf("InferType = %s, want numeric", got)
	}
}

// 数值占比需严格大于 0.8：5 个值里 4 个数字恰好 0.8，不够.
func TestInferTypeNumericRatioBoundary(t *testing.T) {
	values := []string{"1", "2", "3", "4", "abc"}

	if got := InferType(values); got == TypeNumeric {
		t.Fatalf("InferType at exactly 0.8 ratio = numeric, want non-numeric")
	}
}

func TestInferTypeDatetime(t *testing.T) {
	values := []string{"2024-01-15", "2024-02-20", "2023-12-31", "2024-06-01", "2024-07-04"}

	if got := InferType(values); got != TypeDatetime {
		t.Fatalf("InferType = %s, want datetime", got)
	}
}

func TestInferTypeCategorical(t *testing.T) {
	// 3 个独立值 / 9 个样本 = 0.33 < 0.5，且 3 <= 20
	values := []string{"red", "green", "blue", "red", "green", "blue", "red", "red", "green"}

	if got := InferType(values); got != TypeCategorical {
		t.Fatalf("InferType = %s, want categorical", got)
	}
}

func TestInferTypeText(t *testing.T) {
	values := []string{"alpha", "bravo", "charlie", "delta", "echo"}

	if got := InferType(values); got != TypeText {
		t.Fatalf("InferType = %s, want text", got)
	}
}

// 全空列没有任何可推断的样本.
func TestInferTypeUnknown(t *testing.T) {
	if got := InferType([]string{"", "  ", ""}); got != TypeUnknown {
		t.Fatalf("InferType(empty column) = %s, want unknown", got)
	}

	if got := InferType(nil); got != TypeUnknown {
		t.Fatalf("InferType(nil) = %s, want unknown", got)
	}
}

// 空值不参与抽样：夹杂空白的数值列仍是 numeric.
func TestInferTypeSkipsEmptyValues(t *testing.T) {
	values := []string{"1", "", "2", "", "3", "4", "5", ""}

	if got := InferType(values); got != TypeNumeric {
		t.Fatalf("InferType = %s, want numeric", got)
	}
}
