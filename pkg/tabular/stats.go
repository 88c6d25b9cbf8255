package tabular

import (
	"sort"
	"strconv"
	"strings"
)

// NumericStats 数值列的描述统计，基于整列可解析值计算.
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// ColumnInfo 单列画像：类型、缺失情况、独立值数量与样例.
type ColumnInfo struct {
	Name           string        `json:"name"`
	Type           ColumnType    `json:"type"`
	NullCount      int           `json:"null_count"`
	NullPercentage float64       `json:"null_percentage"`
	UniqueCount    int           `json:"unique_count"`
	SampleValues   []string      `json:"sample_values"`
	Numeric        *NumericStats `json:"numeric_stats,omitempty"`
}

// Summary 整表摘要.
type Summary struct {
	Rows          int `json:"rows"`
	Columns       int `json:"columns"`
	MissingValues int `json:"missingValues"`
}

const sampleValuesLimit = 5

// Profile 对整个表做画像：逐列推断类型并计算统计，外加整表摘要.
// 缺失与统计基于全量数据，类型推断按 InferType 的抽样规则.
func Profile(t *Table) ([]ColumnInfo, Summary) {
	infos := make([]ColumnInfo, 0, len(t.Columns))
	missingTotal := 0

	for _, name := range t.Columns {
		values := t.ColumnValues(name)
		info := profileColumn(name, values)
		missingTotal += info.NullCount
		infos = append(infos, info)
	}

	return infos, Summary{
		Rows:          t.RowCount(),
		Columns:       t.ColumnCount(),
		MissingValues: missingTotal,
	}
}

func profileColumn(name string, values []string) ColumnInfo {
	info := ColumnInfo{
		Name:         name,
		Type:         InferType(values),
		SampleValues: []string{},
	}

	distinct := make(map[string]struct{})
	nonEmpty := make([]string, 0, len(values))

	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			info.NullCount++

			continue
		}

		nonEmpty = append(nonEmpty, v)
		distinct[v] = struct{}{}

		if len(info.SampleValues) < sampleValuesLimit {
			info.SampleValues = append(info.SampleValues, v)
		}
	}

	info.UniqueCount = len(distinct)

	if len(values) > 0 {
		info.NullPercentage = float64(info.NullCount) / float64(len(values)) * 100
	}

	if info.Type == TypeNumeric {
		info.Numeric = numericStats(nonEmpty)
	}

	return info
}

// numericStats 统计值基于整列全部可解析数值，中位数取排序后下中位（不插值）.
func numericStats(values []string) *NumericStats {
	nums := make([]float64, 0, len(values))

	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}

		nums = append(nums, f)
	}

	if len(nums) == 0 {
		return nil
	}

	sort.Float64s(nums)

	sum := 0.0
	for _, n := range nums {
		sum += n
	}

	return &NumericStats{
		Min:    nums[0],
		Max:    nums[len(nums)-1],
		Mean:   sum / float64(len(nums)),
		// 偶数长度取下中位，不做插值
		Median: nums[(len(nums)-1)/2],
	}
}
