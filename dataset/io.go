package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// SaveCSV writes the dataset as a tabular file, one row per (cell line, drug)
// pair. The prediction column is written only when predictions are attached.
func (d *ResponseDataset) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "ResponseDataset.SaveCSV")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{"cell_line_id", "drug_id", "response"}
	if d.HasPredictions() {
		header = append(header, "prediction")
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "ResponseDataset.SaveCSV")
	}

	for i := 0; i < d.Len(); i++ {
		row := []string{
			d.CellLineIDs[i],
			d.DrugIDs[i],
			strconv.FormatFloat(d.Response[i], 'g', -1, 64),
		}
		if d.HasPredictions() {
			row = append(row, strconv.FormatFloat(d.Predictions[i], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "ResponseDataset.SaveCSV")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "ResponseDataset.SaveCSV")
}

// LoadResponseCSV reads a dataset written by SaveCSV. A fourth column, when
// present, is loaded as predictions.
func LoadResponseCSV(path string) (*ResponseDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "LoadResponseCSV")
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "LoadResponseCSV")
	}
	if len(records) < 1 {
		return nil, errors.Wrap(errors.ErrEmptyData, "LoadResponseCSV")
	}

	hasPredictions := len(records[0]) > 3
	d := &ResponseDataset{}
	if hasPredictions {
		d.Predictions = []float64{}
	}
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			return nil, errors.Newf("LoadResponseCSV: malformed row in %s: %v", path, rec)
		}
		response, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, errors.Wrap(err, "LoadResponseCSV")
		}
		d.CellLineIDs = append(d.CellLineIDs, rec[0])
		d.DrugIDs = append(d.DrugIDs, rec[1])
		d.Response = append(d.Response, response)
		if hasPredictions {
			prediction, err := strconv.ParseFloat(rec[3], 64)
			if err != nil {
				return nil, errors.Wrap(err, "LoadResponseCSV")
			}
			d.Predictions = append(d.Predictions, prediction)
		}
	}
	return d, nil
}

// LoadFeatureViews builds a FeatureDataset from a directory of CSV files, one
// file per view. The view name is the file name without the .csv suffix; each
// row is an entity id followed by its feature values.
func LoadFeatureViews(dir string) (*FeatureDataset, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, errors.Wrap(err, "LoadFeatureViews")
	}
	if len(entries) == 0 {
		return nil, errors.Newf("LoadFeatureViews: no feature files in %s", dir)
	}

	features := make(map[string]map[string][]float64)
	for _, path := range entries {
		view := strings.TrimSuffix(filepath.Base(path), ".csv")

		file, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "LoadFeatureViews")
		}
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		file.Close()
		if err != nil {
			return nil, errors.Wrap(err, "LoadFeatureViews")
		}

		for _, rec := range records {
			if len(rec) < 2 {
				return nil, errors.Newf("LoadFeatureViews: malformed row in %s: %v", path, rec)
			}
			id := rec[0]
			vec := make([]float64, len(rec)-1)
			for i, field := range rec[1:] {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "LoadFeatureViews: %s id %s", view, id)
				}
				vec[i] = v
			}
			if _, ok := features[id]; !ok {
				features[id] = make(map[string][]float64)
			}
			features[id][view] = vec
		}
	}
	return NewFeatureDataset(features)
}
