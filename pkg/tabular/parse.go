// Package tabular 解析分隔符表格文本，推断列类型并构建摘要统计.
// 这是数据集入库的核心：上传的 CSV 在写入对象存储前先经过这里解析与画像.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CellError 定位一个解析错误到行/列.
type CellError struct {
	Row     int    `json:"row"`    // 1-based，含表头
	Column  int    `json:"column"` // 1-based 字段序号，未知时为 0
	Message string `json:"message"`
}

// ParseError 聚合整个文件的解析错误，任何一个都会使入库中止.
type ParseError struct {
	Errors []CellError `json:"errors"`
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return "tabular: parse failed"
	}

	first := e.Errors[0]

	return fmt.Sprintf("tabular: parse failed at row %d column %d: %s (%d errors total)",
		first.Row, first.Column, first.Message, len(e.Errors))
}

// Table 解析后的表格：表头 + 记录行，单元格保持原始字符串.
type Table struct {
	Columns []string
	Rows    [][]string

	colIndex map[string]int
}

// Parse 将分隔符文本解析为 Table.
// 表头取第一行；空行跳过；字段数不一致/引号未闭合等错误全部收集后以 *ParseError 返回.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 字段数自行校验，以便收集全部错误
	reader.LazyQuotes = false

	var (
		header  []string
		rows    [][]string
		cellErr []CellError
		line    int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		line++

		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				cellErr = append(cellErr, CellError{
					Row:     pe.Line,
					Column:  pe.Column,
					Message: pe.Err.Error(),
				})

				continue
			}

			return nil, fmt.Errorf("tabular: read: %w", err)
		}

		// 跳过空行
		if isBlankRecord(record) {
			continue
		}

		if header == nil {
			header = trimRecord(record)

			continue
		}

		if len(record) != len(header) {
			cellErr = append(cellErr, CellError{
				Row:     line,
				Column:  0,
				Message: fmt.Sprintf("wrong number of fields: got %d, want %d", len(record), len(header)),
			})

			continue
		}

		rows = append(rows, record)
	}

	if len(cellErr) > 0 {
		return nil, &ParseError{Errors: cellErr}
	}

	if header == nil {
		return nil, &ParseError{Errors: []CellError{{Row: 1, Column: 0, Message: "empty file: no header row"}}}
	}

	t := &Table{Columns: header, Rows: rows}
	t.colIndex = make(map[string]int, len(header))

	for i, name := range header {
		t.colIndex[name] = i
	}

	return t, nil
}

// RowCount 返回数据行数（不含表头）.
func (t *Table) RowCount() int { return len(t.Rows) }

// ColumnCount 返回列数.
func (t *Table) ColumnCount() int { return len(t.Columns) }

// ColumnValues 按列名取整列原始值，未知列返回 nil.
func (t *Table) ColumnValues(name string) []string {
	idx, ok := t.colIndex[name]
	if !ok {
		return nil
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}

	return values
}

// Preview 返回前 n 行，每行渲染为 列名→值 的对象；数值单元格转为 float64，与下游消费方的动态类型习惯一致.
func (t *Table) Preview(n int) []map[string]any {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}

	out := make([]map[string]any, 0, n)

	for _, row := range t.Rows[:n] {
		obj := make(map[string]any, len(t.Columns))

		for i, name := range t.Columns {
			cell := row[i]
			if cell == "" {
				obj[name] = nil

				continue
			}

			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				obj[name] = f

				continue
			}

			obj[name] = cell
		}

		out = append(out, obj)
	}

	return out
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func trimRecord(record []string) []string {
	out := make([]string, len(record))
	for i, cell := range record {
		out[i] = strings.TrimSpace(cell)
	}

	return out
}
