// Package table reads input documents from CSV and writes score tables.
package table

import (
	"emfdscore.com/emfd/pat"
	"emfdscore.com/emfd/pipeline"
	"emfdscore.com/emfd/scoring"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ErrorColumn carries the failure of a document that could not be scored.
const ErrorColumn = "error"

// ReadDocuments returns the first column of every record. With header set the
// first record is skipped.
func ReadDocuments(r io.Reader, header bool) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var docs []string
	for line := 0; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read documents: %w", err)
		}
		if header && line == 0 {
			continue
		}
		if len(record) == 0 {
			docs = append(docs, "")
			continue
		}
		docs = append(docs, record[0])
	}
}

// FormatFloat writes NaN as an empty cell and +Inf as "inf".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return pipeline.PosInf
	case math.IsInf(v, -1):
		return pipeline.NegInf
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteScores writes one row per result in input order under the fixed
// columns of the dictionary, followed by the error column.
func WriteScores(w io.Writer, columns []string, results []pipeline.ScoreResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string{}, columns...), ErrorColumn)); err != nil {
		return err
	}
	for _, res := range results {
		record := make([]string, 0, len(columns)+1)
		for _, v := range rowValues(res.Row, len(columns)) {
			record = append(record, FormatFloat(v))
		}
		msg := ""
		if res.Err != nil {
			msg = res.Err.Error()
		}
		if err := writer.Write(append(record, msg)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func rowValues(row scoring.Row, n int) []float64 {
	if row == nil {
		return scoring.NaNRow(make([]string, n)).Values()
	}
	return row.Values()
}

// WriteEntities writes the PAT table, every column always present.
func WriteEntities(w io.Writer, rows []pat.EntityRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(pat.Columns()); err != nil {
		return err
	}
	for _, row := range rows {
		record := row.Texts()
		for _, v := range row.Values() {
			record = append(record, FormatFloat(v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
