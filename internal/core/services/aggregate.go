package services

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

// Aggregate parses a comma-separated sales dataset and returns one summary
// per distinct supplier, ordered by warehouse sales descending. Suppliers
// with equal warehouse sales keep the order in which they were first seen.
//
// Columns are located by header label. Rows without a supplier are dropped
// and numeric fields that are missing or not numbers count as zero. A
// dataset that cannot be read as header plus rows yields an empty result and
// an error wrapping domain.ErrParse.
func Aggregate(raw string) ([]domain.SupplierSummary, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	if strings.TrimSpace(raw) == "" {
		return []domain.SupplierSummary{}, nil
	}

	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := readRecord(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.SupplierSummary{}, nil
		}
		return []domain.SupplierSummary{}, domain.ParseError("header", err)
	}

	cols := indexColumns(header)
	supplierCol, ok := cols[domain.ColumnSupplier]
	if !ok {
		return []domain.SupplierSummary{}, domain.ParseError("header has no "+domain.ColumnSupplier+" column", nil)
	}
	warehouseCol := columnOf(cols, domain.ColumnWarehouseSales)
	retailCol := columnOf(cols, domain.ColumnRetailSales)

	groups := make(map[string]int)
	var out []domain.SupplierSummary

	for {
		rec, err := readRecord(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return []domain.SupplierSummary{}, domain.ParseError("row", err)
		}

		supplier := field(rec, supplierCol)
		if supplier == "" {
			continue
		}

		i, seen := groups[supplier]
		if !seen {
			i = len(out)
			groups[supplier] = i
			out = append(out, domain.SupplierSummary{Supplier: supplier})
		}
		out[i].WarehouseSales += coerceNumber(field(rec, warehouseCol))
		out[i].RetailSales += coerceNumber(field(rec, retailCol))
	}

	if out == nil {
		return []domain.SupplierSummary{}, nil
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].WarehouseSales > out[b].WarehouseSales
	})
	return out, nil
}

// readRecord returns the next record that is not blank. encoding/csv already
// skips empty lines; whitespace-only lines are skipped here as well.
func readRecord(r *csv.Reader) ([]string, error) {
	for {
		rec, err := r.Read()
		if err != nil {
			return nil, err
		}
		if !isBlank(rec) {
			return rec, nil
		}
	}
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// indexColumns maps header labels to positions. The first occurrence of a
// repeated label wins.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, label := range header {
		if _, dup := cols[label]; !dup {
			cols[label] = i
		}
	}
	return cols
}

func columnOf(cols map[string]int, label string) int {
	if i, ok := cols[label]; ok {
		return i
	}
	return -1
}

// field returns the value at col, or "" when the column is absent from the
// header or the row is shorter than the header.
func field(rec []string, col int) string {
	if col < 0 || col >= len(rec) {
		return ""
	}
	return rec[col]
}

func coerceNumber(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
