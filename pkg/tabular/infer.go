package tabular

import (
	"strconv"
	"strings"
	"time"
)

// ColumnType 推断出的列语义类型.
type ColumnType string

const (
	TypeBoolean     ColumnType = "boolean"
	TypeNumeric     ColumnType = "numeric"
	TypeDatetime    ColumnType = "datetime"
	TypeCategorical ColumnType = "categorical"
	TypeText        ColumnType = "text"
	TypeUnknown     ColumnType = "unknown"
)

const (
	// inferSampleSize 类型推断最多检查前 N 个非空值.
	inferSampleSize = 100
	// ratioThreshold 数值/日期判定的占比阈值.
	ratioThreshold = 0.8
	// categoricalMaxDistinct 类别列的独立值上限.
	categoricalMaxDistinct = 20
	// categoricalMaxRatio 类别列独立值占样本的比例上限.
	categoricalMaxRatio = 0.5
)

// booleanLexicon 布尔列允许的小写取值.
var booleanLexicon = map[string]struct{}{
	"true": {}, "false": {},
	"0": {}, "1": {},
	"yes": {}, "no": {},
}

// dateLayouts 日期判定尝试的格式，按常见程度排序.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// InferType 对一列原始值做类型推断.
//
// 规则按优先级依次判定：
//  1. 独立值（小写）不超过 2 个且全部落在布尔词表内 → boolean
//  2. 可解析为数字的占比 > 0.8 → numeric
//  3. 可解析为日期的占比 > 0.8 → datetime
//  4. 独立值 ≤ 20 且独立值/样本量 < 0.5 → categorical
//  5. 其余 → text
//
// 抽样取前 100 个非空值；没有任何非空值时返回 unknown.
func InferType(values []string) ColumnType {
	sample := make([]string, 0, inferSampleSize)

	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}

		sample = append(sample, v)
		if len(sample) >= inferSampleSize {
			break
		}
	}

	if len(sample) == 0 {
		return TypeUnknown
	}

	distinct := make(map[string]struct{}, len(sample))
	for _, v := range sample {
		distinct[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	if len(distinct) <= 2 && allBoolean(distinct) {
		return TypeBoolean
	}

	var numericCount, dateCount int

	for _, v := range sample {
		trimmed := strings.TrimSpace(v)

		if isNumeric(trimmed) {
			numericCount++
		}

		if isDate(trimmed) {
			dateCount++
		}
	}

	total := float64(len(sample))

	if float64(numericCount)/total > ratioThreshold {
		return TypeNumeric
	}

	if float64(dateCount)/total > ratioThreshold {
		return TypeDatetime
	}

	if len(distinct) <= categoricalMaxDistinct &&
		float64(len(distinct))/total < categoricalMaxRatio {
		return TypeCategorical
	}

	return TypeText
}

func allBoolean(distinct map[string]struct{}) bool {
	for v := range distinct {
		if _, ok := booleanLexicon[v]; !ok {
			return false
		}
	}

	return true
}

func isNumeric(v string) bool {
	if v == "" {
		return false
	}

	_, err := strconv.ParseFloat(v, 64)

	return err == nil
}

func isDate(v string) bool {
	if v == "" {
		return false
	}

	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}

	return false
}
