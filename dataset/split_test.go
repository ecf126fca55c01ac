package dataset

import (
	"fmt"
	"reflect"
	"testing"
)

// pairKey identifies a row by its (cell line, drug) pair; the test fixtures
// keep pairs unique so keys identify rows.
func pairKey(d *ResponseDataset, i int) string {
	return d.CellLineIDs[i] + "/" + d.DrugIDs[i]
}

func pairSet(d *ResponseDataset) map[string]struct{} {
	set := make(map[string]struct{}, d.Len())
	for i := 0; i < d.Len(); i++ {
		set[pairKey(d, i)] = struct{}{}
	}
	return set
}

func uniquePairDataset(t *testing.T, n int) *ResponseDataset {
	t.Helper()
	response := make([]float64, n)
	cellLines := make([]string, n)
	drugs := make([]string, n)
	for i := 0; i < n; i++ {
		response[i] = float64(i) * 0.5
		cellLines[i] = fmt.Sprintf("c%d", i)
		drugs[i] = fmt.Sprintf("d%d", i)
	}
	d, err := NewResponseDataset(response, cellLines, drugs)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestLeavePairOut(t *testing.T) {
	d := uniquePairDataset(t, 10)
	folds, err := d.SplitDataset(5, LPO, false, 0, 42)
	if err != nil {
		t.Fatalf("SplitDataset() error = %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("len(folds) = %d, want 5", len(folds))
	}

	seen := make(map[string]int)
	for k, fold := range folds {
		if fold.Test.Len() != 2 {
			t.Errorf("fold %d: test size = %d, want 2", k, fold.Test.Len())
		}
		if fold.Train.Len() != 8 {
			t.Errorf("fold %d: train size = %d, want 8", k, fold.Train.Len())
		}
		if fold.Validation != nil {
			t.Errorf("fold %d: unexpected validation set", k)
		}
		for i := 0; i < fold.Test.Len(); i++ {
			seen[pairKey(fold.Test, i)]++
		}
		// Train and test of one fold must partition the dataset.
		trainSet := pairSet(fold.Train)
		for i := 0; i < fold.Test.Len(); i++ {
			if _, ok := trainSet[pairKey(fold.Test, i)]; ok {
				t.Errorf("fold %d: pair %s in both train and test", k, pairKey(fold.Test, i))
			}
		}
	}
	for key := range pairSet(d) {
		if seen[key] != 1 {
			t.Errorf("pair %s appears in %d test folds, want 1", key, seen[key])
		}
	}
}

func TestLeaveGroupOut(t *testing.T) {
	tests := []struct {
		name    string
		mode    SplitMode
		groupOf func(d *ResponseDataset, i int) string
	}{
		{
			name:    "cell lines exclusive",
			mode:    LCO,
			groupOf: func(d *ResponseDataset, i int) string { return d.CellLineIDs[i] },
		},
		{
			name:    "drugs exclusive",
			mode:    LDO,
			groupOf: func(d *ResponseDataset, i int) string { return d.DrugIDs[i] },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Groups of uneven size in both dimensions.
			d, err := NewResponseDataset(
				[]float64{1, 2, 3, 4, 5, 6},
				[]string{"c1", "c1", "c2", "c3", "c3", "c4"},
				[]string{"d1", "d2", "d1", "d2", "d3", "d4"},
			)
			if err != nil {
				t.Fatal(err)
			}

			folds, err := d.SplitDataset(2, tt.mode, false, 0, 42)
			if err != nil {
				t.Fatalf("SplitDataset() error = %v", err)
			}

			rowsSeen := 0
			for k, fold := range folds {
				rowsSeen += fold.Test.Len()
				trainGroups := make(map[string]struct{})
				for i := 0; i < fold.Train.Len(); i++ {
					trainGroups[tt.groupOf(fold.Train, i)] = struct{}{}
				}
				for i := 0; i < fold.Test.Len(); i++ {
					g := tt.groupOf(fold.Test, i)
					if _, ok := trainGroups[g]; ok {
						t.Errorf("fold %d: group %s leaks into train", k, g)
					}
				}
				if fold.Train.Len()+fold.Test.Len() != d.Len() {
					t.Errorf("fold %d: train %d + test %d != %d",
						k, fold.Train.Len(), fold.Test.Len(), d.Len())
				}
			}
			if rowsSeen != d.Len() {
				t.Errorf("test folds cover %d rows, want %d", rowsSeen, d.Len())
			}
		})
	}
}

func TestSplitDeterminism(t *testing.T) {
	for _, mode := range []SplitMode{LPO, LCO, LDO} {
		t.Run(string(mode), func(t *testing.T) {
			a := uniquePairDataset(t, 12)
			b := uniquePairDataset(t, 12)
			foldsA, err := a.SplitDataset(3, mode, true, 0.25, 7)
			if err != nil {
				t.Fatal(err)
			}
			foldsB, err := b.SplitDataset(3, mode, true, 0.25, 7)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(foldsA, foldsB) {
				t.Error("same seed produced different folds")
			}
		})
	}
}

func TestSplitRejectsBadConfig(t *testing.T) {
	d := uniquePairDataset(t, 8)

	if _, err := d.SplitDataset(1, LPO, false, 0, 42); err == nil {
		t.Error("expected error for n_splits = 1")
	}
	if _, err := d.SplitDataset(4, SplitMode("LTO"), false, 0, 42); err == nil {
		t.Error("expected error for unknown split mode")
	}
	if _, err := d.SplitDataset(4, LPO, true, 0, 42); err == nil {
		t.Error("expected error for validation_ratio = 0")
	}
	if _, err := d.SplitDataset(4, LPO, true, 0.9, 42); err == nil {
		t.Error("expected error for validation_ratio close to 1")
	}
}

func TestValidationCarveOut(t *testing.T) {
	d := uniquePairDataset(t, 20)
	folds, err := d.SplitDataset(4, LPO, true, 0.25, 42)
	if err != nil {
		t.Fatalf("SplitDataset() error = %v", err)
	}

	all := pairSet(d)
	for k, fold := range folds {
		if fold.Validation == nil {
			t.Fatalf("fold %d: missing validation set", k)
		}
		// test 5, remaining 15 re-split 4-ways: validation gets the first
		// sub-partition of 4, train keeps 11.
		if fold.Test.Len() != 5 {
			t.Errorf("fold %d: test size = %d, want 5", k, fold.Test.Len())
		}
		if fold.Validation.Len() != 4 {
			t.Errorf("fold %d: validation size = %d, want 4", k, fold.Validation.Len())
		}
		if fold.Train.Len() != 11 {
			t.Errorf("fold %d: train size = %d, want 11", k, fold.Train.Len())
		}

		// The three partitions are disjoint and cover the dataset.
		union := make(map[string]struct{}, d.Len())
		total := 0
		for _, part := range []*ResponseDataset{fold.Train, fold.Validation, fold.Test} {
			total += part.Len()
			for key := range pairSet(part) {
				union[key] = struct{}{}
			}
		}
		if total != d.Len() || !reflect.DeepEqual(union, all) {
			t.Errorf("fold %d: train/validation/test is not a partition of the dataset", k)
		}
	}
}

func TestValidationCarveOutKeepsGroupsExclusive(t *testing.T) {
	// 8 cell lines x 2 drugs. LCO validation carve-out must keep cell lines
	// exclusive between train and validation as well.
	var response []float64
	var cellLines, drugs []string
	for c := 0; c < 8; c++ {
		for d := 0; d < 2; d++ {
			response = append(response, float64(c*2+d))
			cellLines = append(cellLines, fmt.Sprintf("c%d", c))
			drugs = append(drugs, fmt.Sprintf("d%d", d))
		}
	}
	d, err := NewResponseDataset(response, cellLines, drugs)
	if err != nil {
		t.Fatal(err)
	}

	folds, err := d.SplitDataset(2, LCO, true, 0.25, 42)
	if err != nil {
		t.Fatal(err)
	}
	for k, fold := range folds {
		trainGroups := make(map[string]struct{})
		for _, g := range fold.Train.CellLineIDs {
			trainGroups[g] = struct{}{}
		}
		for _, g := range fold.Validation.CellLineIDs {
			if _, ok := trainGroups[g]; ok {
				t.Errorf("fold %d: cell line %s in both train and validation", k, g)
			}
		}
	}
}

func TestSplitEarlyStopping(t *testing.T) {
	v := uniquePairDataset(t, 12)
	before := pairSet(v)

	validation, earlyStopping, err := SplitEarlyStopping(v, LPO, 42)
	if err != nil {
		t.Fatalf("SplitEarlyStopping() error = %v", err)
	}
	if validation.Len() != 9 {
		t.Errorf("validation size = %d, want 9", validation.Len())
	}
	if earlyStopping.Len() != 3 {
		t.Errorf("early stopping size = %d, want 3", earlyStopping.Len())
	}

	// Input untouched, output a partition of it.
	if !reflect.DeepEqual(pairSet(v), before) || v.Len() != 12 {
		t.Error("SplitEarlyStopping modified its input")
	}
	union := pairSet(validation)
	for key := range pairSet(earlyStopping) {
		if _, ok := union[key]; ok {
			t.Errorf("pair %s in both validation and early stopping", key)
		}
		union[key] = struct{}{}
	}
	if !reflect.DeepEqual(union, before) {
		t.Error("validation + early stopping do not cover the input")
	}
}

func TestParseSplitMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SplitMode
		wantErr bool
	}{
		{in: "LPO", want: LPO},
		{in: "LCO", want: LCO},
		{in: "LDO", want: LDO},
		{in: "lpo", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSplitMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSplitMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseSplitMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPartitionSizes(t *testing.T) {
	tests := []struct {
		n, k int
		want []int
	}{
		{n: 10, k: 5, want: []int{2, 2, 2, 2, 2}},
		{n: 11, k: 5, want: []int{3, 2, 2, 2, 2}},
		{n: 7, k: 3, want: []int{3, 2, 2}},
		{n: 2, k: 4, want: []int{1, 1, 0, 0}},
	}
	for _, tt := range tests {
		got := partitionSizes(tt.n, tt.k)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("partitionSizes(%d, %d) = %v, want %v", tt.n, tt.k, got, tt.want)
		}
	}
}
