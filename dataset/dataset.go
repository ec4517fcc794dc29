// Package dataset provides the typed table of cell-nuclei measurements used
// throughout the harness: loading from CSV, label encoding, train/test
// partitioning and conversion to gonum matrices.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tksato/wdbc/pkg/errors"
)

// FeatureNames is the declared numeric feature schema of the diagnosis
// table: ten cell-nucleus measurements, each reported as its mean, standard
// error and worst (largest) value over the nuclei in an image.
var FeatureNames = []string{
	"radius_mean", "texture_mean", "perimeter_mean", "area_mean",
	"smoothness_mean", "compactness_mean", "concavity_mean",
	"concave_points_mean", "symmetry_mean", "fractal_dimension_mean",
	"radius_se", "texture_se", "perimeter_se", "area_se",
	"smoothness_se", "compactness_se", "concavity_se",
	"concave_points_se", "symmetry_se", "fractal_dimension_se",
	"radius_worst", "texture_worst", "perimeter_worst", "area_worst",
	"smoothness_worst", "compactness_worst", "concavity_worst",
	"concave_points_worst", "symmetry_worst", "fractal_dimension_worst",
}

// NumFeatures is the number of declared feature columns.
const NumFeatures = 30

// Record is one observation: an identifier, the raw diagnosis label and the
// ordered numeric feature values. Records are immutable once loaded.
type Record struct {
	ID       string
	RawLabel string
	Features []float64 // ordered to match the dataset schema
}

// Dataset is an ordered sequence of Records sharing one feature-name schema.
// Every Record holds a value for every declared feature.
type Dataset struct {
	schema  []string
	records []Record
}

// New builds a Dataset from a schema and records, checking the schema
// invariant: every record must carry exactly one value per declared feature.
func New(schema []string, records []Record) (*Dataset, error) {
	if len(schema) == 0 {
		return nil, errors.NewValueError("dataset.New", "empty feature schema")
	}
	for i, rec := range records {
		if len(rec.Features) != len(schema) {
			return nil, errors.NewDimensionError("dataset.New", len(schema), len(rec.Features), 1)
		}
		_ = i
	}
	return &Dataset{
		schema:  append([]string(nil), schema...),
		records: records,
	}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	return len(d.schema)
}

// Schema returns a copy of the feature-name schema.
func (d *Dataset) Schema() []string {
	return append([]string(nil), d.schema...)
}

// Record returns the i-th record.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// FeatureMatrix converts the feature columns into an n×p dense matrix,
// preserving record order.
func (d *Dataset) FeatureMatrix() *mat.Dense {
	n := len(d.records)
	p := len(d.schema)
	if n == 0 {
		return &mat.Dense{}
	}
	X := mat.NewDense(n, p, nil)
	for i, rec := range d.records {
		X.SetRow(i, rec.Features)
	}
	return X
}

// LabelVector encodes every record's raw label into the binary indicator
// (0 = benign, 1 = malignant), preserving record order. An unrecognized
// label fails with InvalidLabelError.
func (d *Dataset) LabelVector() (*mat.VecDense, error) {
	n := len(d.records)
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.LabelVector")
	}
	y := mat.NewVecDense(n, nil)
	for i, rec := range d.records {
		v, err := EncodeLabel(rec.RawLabel)
		if err != nil {
			return nil, err
		}
		y.SetVec(i, v)
	}
	return y, nil
}

// Subset returns a new Dataset holding the records at the given indices,
// in the given order. The underlying records are shared, not copied; they
// are immutable so sharing is safe.
func (d *Dataset) Subset(indices []int) *Dataset {
	records := make([]Record, len(indices))
	for i, idx := range indices {
		records[i] = d.records[idx]
	}
	return &Dataset{schema: d.schema, records: records}
}
