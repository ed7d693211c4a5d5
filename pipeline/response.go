package pipeline

import (
	"emfdscore.com/emfd/pat"
	"emfdscore.com/emfd/scoring"
	"math"
)

// Result is the output of one configuration for one request.
type Result struct {
	ConfigName string
	Data       interface{}
}

// Infinite ratios are written with the same spelling as the CSV tables.
const (
	PosInf = "inf"
	NegInf = "-inf"
)

// finite maps NaN to nil, which serializes as JSON null, and infinities to
// PosInf or NegInf.
func finite(v float64) interface{} {
	switch {
	case math.IsNaN(v):
		return nil
	case math.IsInf(v, 1):
		return PosInf
	case math.IsInf(v, -1):
		return NegInf
	}
	return v
}

// RowMap keys the values of row by column name.
func RowMap(row scoring.Row) map[string]interface{} {
	cols := row.Columns()
	values := row.Values()
	out := make(map[string]interface{}, len(cols))
	for i, col := range cols {
		out[col] = finite(values[i])
	}
	return out
}

func EntityRowMaps(rows []pat.EntityRow) []map[string]interface{} {
	cols := pat.Columns()
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]interface{}, len(cols))
		texts := row.Texts()
		for i, text := range texts {
			m[cols[i]] = text
		}
		for i, v := range row.Values() {
			m[cols[len(texts)+i]] = finite(v)
		}
		out = append(out, m)
	}
	return out
}

func errorData(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}
