package dataset

import (
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds descriptive statistics for one numeric column.
type ColumnSummary struct {
	Name   string
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary describes a record set: per-numeric-column statistics and the
// label balance.
type Summary struct {
	Rows     int
	Numeric  []ColumnSummary
	ByStroke map[Label]int
}

// Summarize computes descriptive statistics over the numeric columns and
// counts records per label.
func Summarize(records []Record) Summary {
	s := Summary{
		Rows:     len(records),
		ByStroke: make(map[Label]int, 2),
	}

	age := make([]float64, 0, len(records))
	glucose := make([]float64, 0, len(records))
	bmi := make([]float64, 0, len(records))

	for _, rec := range records {
		age = append(age, rec.Age)
		glucose = append(glucose, rec.AvgGlucoseLevel)
		if rec.HasBMI() {
			bmi = append(bmi, rec.BMI)
		}
		s.ByStroke[rec.Stroke]++
	}

	s.Numeric = []ColumnSummary{
		summarizeColumn("age", age),
		summarizeColumn("avg_glucose_level", glucose),
		summarizeColumn("bmi", bmi),
	}
	return s
}

func summarizeColumn(name string, values []float64) ColumnSummary {
	cs := ColumnSummary{Name: name, Count: len(values)}
	if len(values) == 0 {
		return cs
	}

	cs.Mean, cs.StdDev = stat.MeanStdDev(values, nil)
	cs.Min, cs.Max = values[0], values[0]
	for _, v := range values[1:] {
		if v < cs.Min {
			cs.Min = v
		}
		if v > cs.Max {
			cs.Max = v
		}
	}
	return cs
}
