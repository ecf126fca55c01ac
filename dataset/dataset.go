// Package dataset holds the paired drug response data and the feature views
// used to predict it, together with the cross-validation splitting logic.
//
// A ResponseDataset is a set of (cell line, drug, response) triples stored as
// parallel slices, optionally carrying one prediction per row. A
// FeatureDataset maps entity ids to named feature views. Splitting produces
// train/validation/test folds under leave-pair-out or leave-group-out
// semantics.
package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// ResponseDataset is a drug response dataset: parallel slices of responses,
// cell line ids and drug ids. Predictions is nil until predictions are
// attached; when present it has the same length as the other slices.
type ResponseDataset struct {
	Response    []float64
	CellLineIDs []string
	DrugIDs     []string
	Predictions []float64

	// CVSplits holds the folds produced by the most recent SplitDataset call.
	CVSplits []Fold
}

// NewResponseDataset creates a response dataset from parallel slices.
// All slices must have the same length.
func NewResponseDataset(response []float64, cellLineIDs, drugIDs []string) (*ResponseDataset, error) {
	if len(cellLineIDs) != len(response) {
		return nil, errors.NewDimensionError("NewResponseDataset", len(response), len(cellLineIDs), 0)
	}
	if len(drugIDs) != len(response) {
		return nil, errors.NewDimensionError("NewResponseDataset", len(response), len(drugIDs), 0)
	}
	return &ResponseDataset{
		Response:    append([]float64(nil), response...),
		CellLineIDs: append([]string(nil), cellLineIDs...),
		DrugIDs:     append([]string(nil), drugIDs...),
	}, nil
}

// Len returns the number of response rows.
func (d *ResponseDataset) Len() int {
	return len(d.Response)
}

// HasPredictions reports whether predictions are attached.
func (d *ResponseDataset) HasPredictions() bool {
	return d.Predictions != nil
}

// SetPredictions attaches one prediction per row.
func (d *ResponseDataset) SetPredictions(predictions []float64) error {
	if len(predictions) != d.Len() {
		return errors.NewDimensionError("ResponseDataset.SetPredictions", d.Len(), len(predictions), 0)
	}
	d.Predictions = append([]float64(nil), predictions...)
	return nil
}

// String returns a truncated preview of the dataset.
func (d *ResponseDataset) String() string {
	n := d.Len()
	if n > 3 {
		s := fmt.Sprintf("ResponseDataset: CLs %v...; Drugs %v...; Response %v...",
			d.CellLineIDs[:3], d.DrugIDs[:3], d.Response[:3])
		if d.HasPredictions() {
			s += fmt.Sprintf("; Predictions %v...", d.Predictions[:3])
		}
		return s
	}
	s := fmt.Sprintf("ResponseDataset: CLs %v; Drugs %v; Response %v",
		d.CellLineIDs, d.DrugIDs, d.Response)
	if d.HasPredictions() {
		s += fmt.Sprintf("; Predictions %v", d.Predictions)
	}
	return s
}

// Copy returns a deep copy of the dataset. CVSplits are not carried over.
func (d *ResponseDataset) Copy() *ResponseDataset {
	c := &ResponseDataset{
		Response:    append([]float64(nil), d.Response...),
		CellLineIDs: append([]string(nil), d.CellLineIDs...),
		DrugIDs:     append([]string(nil), d.DrugIDs...),
	}
	if d.HasPredictions() {
		c.Predictions = append([]float64(nil), d.Predictions...)
	}
	return c
}

// AddRows appends all rows of other to d. Either both datasets carry
// predictions or neither does; a mismatch would silently orphan prediction
// rows, so it is reported as an error instead.
func (d *ResponseDataset) AddRows(other *ResponseDataset) error {
	if d.HasPredictions() != other.HasPredictions() {
		return errors.NewValueError("ResponseDataset.AddRows",
			"predictions are present on only one of the datasets")
	}
	d.Response = append(d.Response, other.Response...)
	d.CellLineIDs = append(d.CellLineIDs, other.CellLineIDs...)
	d.DrugIDs = append(d.DrugIDs, other.DrugIDs...)
	if d.HasPredictions() {
		d.Predictions = append(d.Predictions, other.Predictions...)
	}
	return nil
}

// Shuffle applies one seeded permutation uniformly to all parallel slices,
// predictions included. The same seed always yields the same order.
func (d *ResponseDataset) Shuffle(seed int64) {
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(d.Len(), func(i, j int) {
		d.Response[i], d.Response[j] = d.Response[j], d.Response[i]
		d.CellLineIDs[i], d.CellLineIDs[j] = d.CellLineIDs[j], d.CellLineIDs[i]
		d.DrugIDs[i], d.DrugIDs[j] = d.DrugIDs[j], d.DrugIDs[i]
		if d.HasPredictions() {
			d.Predictions[i], d.Predictions[j] = d.Predictions[j], d.Predictions[i]
		}
	})
}

// filter keeps only the rows for which keep returns true, preserving order.
func (d *ResponseDataset) filter(keep func(i int) bool) {
	response := d.Response[:0]
	cellLines := d.CellLineIDs[:0]
	drugs := d.DrugIDs[:0]
	var predictions []float64
	if d.HasPredictions() {
		predictions = d.Predictions[:0]
	}
	for i := 0; i < len(d.Response); i++ {
		if !keep(i) {
			continue
		}
		response = append(response, d.Response[i])
		cellLines = append(cellLines, d.CellLineIDs[i])
		drugs = append(drugs, d.DrugIDs[i])
		if d.HasPredictions() {
			predictions = append(predictions, d.Predictions[i])
		}
	}
	d.Response = response
	d.CellLineIDs = cellLines
	d.DrugIDs = drugs
	if d.HasPredictions() {
		d.Predictions = predictions
	}
}

// RemoveCellLines removes all rows whose cell line id is in cellLinesToRemove.
func (d *ResponseDataset) RemoveCellLines(cellLinesToRemove ...string) {
	remove := make(map[string]struct{}, len(cellLinesToRemove))
	for _, id := range cellLinesToRemove {
		remove[id] = struct{}{}
	}
	d.filter(func(i int) bool {
		_, gone := remove[d.CellLineIDs[i]]
		return !gone
	})
}

// RemoveDrugs removes all rows whose drug id is in drugsToRemove.
func (d *ResponseDataset) RemoveDrugs(drugsToRemove ...string) {
	remove := make(map[string]struct{}, len(drugsToRemove))
	for _, id := range drugsToRemove {
		remove[id] = struct{}{}
	}
	d.filter(func(i int) bool {
		_, gone := remove[d.DrugIDs[i]]
		return !gone
	})
}

// ReduceTo keeps only the rows whose cell line id is in cellLineIDs AND whose
// drug id is in drugIDs. The removal set for each side is derived from the
// current rows, so applying the two removals in either order gives the same
// result, and a second application with the same whitelists is a no-op.
func (d *ResponseDataset) ReduceTo(cellLineIDs, drugIDs []string) {
	keepCL := make(map[string]struct{}, len(cellLineIDs))
	for _, id := range cellLineIDs {
		keepCL[id] = struct{}{}
	}
	keepDrug := make(map[string]struct{}, len(drugIDs))
	for _, id := range drugIDs {
		keepDrug[id] = struct{}{}
	}

	var removeDrugs []string
	for _, id := range d.DrugIDs {
		if _, ok := keepDrug[id]; !ok {
			removeDrugs = append(removeDrugs, id)
		}
	}
	var removeCellLines []string
	for _, id := range d.CellLineIDs {
		if _, ok := keepCL[id]; !ok {
			removeCellLines = append(removeCellLines, id)
		}
	}

	d.RemoveDrugs(removeDrugs...)
	d.RemoveCellLines(removeCellLines...)
}

// SplitDataset partitions the dataset into cross-validation folds, stores
// them in CVSplits and returns them. See the splitter in split.go for the
// semantics of the individual modes.
func (d *ResponseDataset) SplitDataset(nSplits int, mode SplitMode, splitValidation bool, validationRatio float64, seed int64) ([]Fold, error) {
	folds, err := split(d, nSplits, mode, splitValidation, validationRatio, seed)
	if err != nil {
		return nil, err
	}
	d.CVSplits = folds
	return folds, nil
}
