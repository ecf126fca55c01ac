package dataset

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// SplitMode selects what a cross-validation fold holds out.
type SplitMode string

const (
	// LPO (leave-pair-out) holds out random (cell line, drug) pairs.
	LPO SplitMode = "LPO"
	// LCO (leave-cell-line-out) holds out whole cell lines: no cell line
	// appears in both train and test of the same fold.
	LCO SplitMode = "LCO"
	// LDO (leave-drug-out) holds out whole drugs.
	LDO SplitMode = "LDO"
)

// ParseSplitMode validates a mode string from configuration.
func ParseSplitMode(s string) (SplitMode, error) {
	switch SplitMode(s) {
	case LPO, LCO, LDO:
		return SplitMode(s), nil
	default:
		return "", errors.NewConfigurationError("ParseSplitMode", "split mode", s,
			string(LPO), string(LCO), string(LDO))
	}
}

// Fold is one train/validation/test partition of a response dataset.
// Validation is nil when the split was produced without a validation
// carve-out.
type Fold struct {
	Train      *ResponseDataset
	Validation *ResponseDataset
	Test       *ResponseDataset
}

// split dispatches to the mode-specific splitter. Every mode partitions the
// rows so that each row lands in exactly one test fold, shuffling with the
// given seed so repeated calls produce identical folds.
func split(d *ResponseDataset, nSplits int, mode SplitMode, splitValidation bool, validationRatio float64, seed int64) ([]Fold, error) {
	if nSplits < 2 {
		// A single split leaves no training data; reject rather than
		// produce an empty train set.
		return nil, errors.NewConfigurationError("SplitDataset", "n_splits", nSplits)
	}

	switch mode {
	case LPO:
		return leavePairOut(d, nSplits, splitValidation, validationRatio, seed)
	case LCO, LDO:
		return leaveGroupOut(d, mode, nSplits, splitValidation, validationRatio, seed)
	default:
		return nil, errors.NewConfigurationError("SplitDataset", "split mode", string(mode),
			string(LPO), string(LCO), string(LDO))
	}
}

// partitionSizes balances n items over k partitions: the first n mod k
// partitions get one extra item.
func partitionSizes(n, k int) []int {
	sizes := make([]int, k)
	base := n / k
	remainder := n % k
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}
	return sizes
}

// subset builds a fresh dataset from the rows at the given indices.
func subset(d *ResponseDataset, indices []int) *ResponseDataset {
	s := &ResponseDataset{
		Response:    make([]float64, 0, len(indices)),
		CellLineIDs: make([]string, 0, len(indices)),
		DrugIDs:     make([]string, 0, len(indices)),
	}
	if d.HasPredictions() {
		s.Predictions = make([]float64, 0, len(indices))
	}
	for _, i := range indices {
		s.Response = append(s.Response, d.Response[i])
		s.CellLineIDs = append(s.CellLineIDs, d.CellLineIDs[i])
		s.DrugIDs = append(s.DrugIDs, d.DrugIDs[i])
		if d.HasPredictions() {
			s.Predictions = append(s.Predictions, d.Predictions[i])
		}
	}
	return s
}

// leavePairOut shuffles the row indices with the seed and cuts them into
// nSplits contiguous partitions. Fold k tests on partition k and trains on
// all other partitions. Exclusivity holds at row granularity only.
func leavePairOut(d *ResponseDataset, nSplits int, splitValidation bool, validationRatio float64, seed int64) ([]Fold, error) {
	n := d.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	sizes := partitionSizes(n, nSplits)
	folds := make([]Fold, nSplits)
	offset := 0
	for k := 0; k < nSplits; k++ {
		testIdx := indices[offset : offset+sizes[k]]
		trainIdx := make([]int, 0, n-sizes[k])
		trainIdx = append(trainIdx, indices[:offset]...)
		trainIdx = append(trainIdx, indices[offset+sizes[k]:]...)
		offset += sizes[k]

		fold := Fold{
			Train: subset(d, trainIdx),
			Test:  subset(d, testIdx),
		}
		if splitValidation {
			if err := carveValidation(&fold, LPO, validationRatio, seed); err != nil {
				return nil, err
			}
		}
		folds[k] = fold
	}
	return folds, nil
}

// leaveGroupOut partitions the distinct group values (cell lines for LCO,
// drugs for LDO) instead of the rows. Fold k tests on every row whose group
// is in partition k, which guarantees that no group value appears in both
// train and test of the same fold.
func leaveGroupOut(d *ResponseDataset, mode SplitMode, nSplits int, splitValidation bool, validationRatio float64, seed int64) ([]Fold, error) {
	groupOf := func(i int) string { return d.CellLineIDs[i] }
	if mode == LDO {
		groupOf = func(i int) string { return d.DrugIDs[i] }
	}

	seen := make(map[string]struct{})
	var groups []string
	for i := 0; i < d.Len(); i++ {
		g := groupOf(i)
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(len(groups), func(i, j int) {
		groups[i], groups[j] = groups[j], groups[i]
	})

	sizes := partitionSizes(len(groups), nSplits)
	folds := make([]Fold, nSplits)
	offset := 0
	for k := 0; k < nSplits; k++ {
		testGroups := make(map[string]struct{}, sizes[k])
		for _, g := range groups[offset : offset+sizes[k]] {
			testGroups[g] = struct{}{}
		}
		offset += sizes[k]

		var trainIdx, testIdx []int
		for i := 0; i < d.Len(); i++ {
			if _, ok := testGroups[groupOf(i)]; ok {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}

		fold := Fold{
			Train: subset(d, trainIdx),
			Test:  subset(d, testIdx),
		}
		if splitValidation {
			if err := carveValidation(&fold, mode, validationRatio, seed); err != nil {
				return nil, err
			}
		}
		folds[k] = fold
	}
	return folds, nil
}

// carveValidation re-splits a fold's train partition with the same mode and
// moves one sub-fold into Validation. The ratio is approximated by an integer
// number of sub-splits, round(1/ratio); exact fidelity for arbitrary ratios
// is not guaranteed. The test partition is never touched.
func carveValidation(fold *Fold, mode SplitMode, validationRatio float64, seed int64) error {
	if validationRatio <= 0 || validationRatio >= 1 {
		return errors.NewConfigurationError("SplitDataset", "validation_ratio", validationRatio)
	}
	nValidation := int(math.Round(1 / validationRatio))
	if nValidation < 2 {
		return errors.NewConfigurationError("SplitDataset", "validation_ratio", validationRatio)
	}
	subFolds, err := split(fold.Train, nValidation, mode, false, 0, seed)
	if err != nil {
		return err
	}
	fold.Train = subFolds[0].Train
	fold.Validation = subFolds[0].Test
	return nil
}

// SplitEarlyStopping carves an early-stopping set out of a validation set by
// re-splitting it 4-ways with the parent test mode: fold 0's train portion
// (3/4) becomes the new validation set, fold 0's test portion (1/4) the
// early-stopping set. The input dataset is not modified.
func SplitEarlyStopping(validation *ResponseDataset, mode SplitMode, seed int64) (*ResponseDataset, *ResponseDataset, error) {
	v := validation.Copy()
	v.Shuffle(seed)
	folds, err := v.SplitDataset(4, mode, false, 0, seed)
	if err != nil {
		return nil, nil, err
	}
	return folds[0].Train, folds[0].Test, nil
}
