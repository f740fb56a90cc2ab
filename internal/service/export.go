package service

import (
	"encoding/csv"
	"io"
	"strconv"

	"gobag/internal/model"
)

// utf8BOM makes spreadsheet apps pick up the encoding, which matters for the
// Japanese item names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteResultsCSV serializes the last computed aggregation in ranking order:
// item name, category, count, percentage of total participants.
func WriteResultsCSV(w io.Writer, results *model.SessionResults) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"アイテム名", "カテゴリー", "選択数", "選択率(%)"}); err != nil {
		return err
	}

	for _, row := range results.Ranking {
		percent := "0"
		if results.TotalCount > 0 {
			percent = strconv.FormatFloat(float64(row.Count)/float64(results.TotalCount)*100, 'f', 1, 64)
		}
		record := []string{row.Name, row.Category, strconv.Itoa(row.Count), percent}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
