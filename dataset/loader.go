package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tksato/wdbc/pkg/errors"
	"github.com/tksato/wdbc/pkg/log"
)

// labelColumn is the header name of the raw diagnosis column.
const labelColumn = "diagnosis"

// idColumn is the header name of the identifier column. It is read into
// Record.ID and otherwise ignored.
const idColumn = "id"

// Load reads the diagnosis table from a CSV file at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load: opening %s", path)
	}
	defer f.Close()
	return LoadReader(f, path)
}

// LoadReader reads the diagnosis table from r. The first row must be a
// header; every name in FeatureNames must appear as a column, along with
// the diagnosis column. Extra columns are ignored. The name parameter is
// used only for error messages.
//
// Any declared feature column that is absent, and any feature cell that
// does not parse as a float, fails with SchemaMismatchError.
func LoadReader(r io.Reader, name string) (*Dataset, error) {
	logger := log.GetLoggerWithName("dataset")

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewSchemaMismatchError(name, "", 0, "missing header row")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadReader: reading header of %s", name)
	}

	// Map normalized column names onto positions. The public WDBC CSV
	// writes some feature names with spaces ("concave points_mean"); those
	// normalize to the declared underscore form.
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[normalizeColumn(col)] = i
	}

	labelIdx, ok := colIndex[labelColumn]
	if !ok {
		return nil, errors.NewSchemaMismatchError(name, labelColumn, 1, "declared column is absent")
	}
	featureIdx := make([]int, len(FeatureNames))
	for j, feat := range FeatureNames {
		idx, ok := colIndex[feat]
		if !ok {
			return nil, errors.NewSchemaMismatchError(name, feat, 1, "declared column is absent")
		}
		featureIdx[j] = idx
	}
	idIdx, hasID := colIndex[idColumn]

	var records []Record
	row := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, errors.Wrapf(err, "dataset.LoadReader: reading row %d of %s", row, name)
		}

		rec := Record{
			RawLabel: strings.TrimSpace(fields[labelIdx]),
			Features: make([]float64, len(FeatureNames)),
		}
		if hasID {
			rec.ID = strings.TrimSpace(fields[idIdx])
		}
		for j, idx := range featureIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
			if err != nil {
				return nil, errors.NewSchemaMismatchError(name, FeatureNames[j], row,
					"cannot parse "+strconv.Quote(fields[idx])+" as float")
			}
			rec.Features[j] = v
		}
		records = append(records, rec)
	}

	d, err := New(FeatureNames, records)
	if err != nil {
		return nil, err
	}

	logger.Info("dataset loaded",
		log.OperationKey, "load",
		log.SamplesKey, d.Len(),
		log.FeaturesKey, d.NumFeatures(),
		"path", name,
	)
	return d, nil
}

// normalizeColumn lower-cases a header name and folds spaces into
// underscores so both published spellings of the schema match.
func normalizeColumn(col string) string {
	col = strings.TrimSpace(strings.ToLower(col))
	return strings.ReplaceAll(col, " ", "_")
}
