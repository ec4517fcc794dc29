package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tksato/wdbc/pkg/errors"
)

// FeatureStats holds descriptive statistics for one feature column.
type FeatureStats struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary describes a Dataset: per-feature statistics and the class balance.
type Summary struct {
	Samples  int
	Features []FeatureStats

	// Benign and Malignant count the recognized labels; Unknown counts
	// anything else so a corrupt table is visible before encoding fails.
	Benign    int
	Malignant int
	Unknown   int
}

// Summarize computes descriptive statistics over the whole dataset.
func Summarize(d *Dataset) (*Summary, error) {
	n := d.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.Summarize")
	}

	schema := d.Schema()
	s := &Summary{
		Samples:  n,
		Features: make([]FeatureStats, len(schema)),
	}

	col := make([]float64, n)
	for j, name := range schema {
		for i := 0; i < n; i++ {
			col[i] = d.Record(i).Features[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		s.Features[j] = FeatureStats{
			Name:   name,
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(col),
			Max:    floats.Max(col),
		}
	}

	for i := 0; i < n; i++ {
		switch d.Record(i).RawLabel {
		case "B":
			s.Benign++
		case "M":
			s.Malignant++
		default:
			s.Unknown++
		}
	}
	return s, nil
}
