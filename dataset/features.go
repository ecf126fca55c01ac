package dataset

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// RandMode selects how Randomize perturbs a feature view.
type RandMode string

const (
	// RandPermutation reassigns feature vectors between entities using one
	// random permutation of the entity ids, applied consistently across the
	// requested views: entities are paired at random, values within a vector
	// are untouched.
	RandPermutation RandMode = "permutation"
	// RandGaussian replaces each vector with a fresh sample from a normal
	// distribution parameterized by that vector's own mean and standard
	// deviation: per-entity scale survives, structure does not.
	RandGaussian RandMode = "gaussian"
	// RandZeroing replaces each vector with zeros of the same shape.
	RandZeroing RandMode = "zeroing"
)

// ParseRandMode validates a randomization mode string from configuration.
func ParseRandMode(s string) (RandMode, error) {
	switch RandMode(s) {
	case RandPermutation, RandGaussian, RandZeroing:
		return RandMode(s), nil
	default:
		return "", errors.NewConfigurationError("ParseRandMode", "randomization mode", s,
			string(RandPermutation), string(RandGaussian), string(RandZeroing))
	}
}

// FeatureDataset maps entity ids (cell lines or drugs) to named feature
// views. Every entity carries the same set of views, and within a view all
// vectors have the same length.
type FeatureDataset struct {
	features map[string]map[string][]float64
}

// NewFeatureDataset wraps a two-level map entity id -> view name -> vector.
// Entities with differing view sets are rejected.
func NewFeatureDataset(features map[string]map[string][]float64) (*FeatureDataset, error) {
	if len(features) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewFeatureDataset")
	}

	var reference []string
	for _, views := range features {
		names := make([]string, 0, len(views))
		for v := range views {
			names = append(names, v)
		}
		sort.Strings(names)
		if reference == nil {
			reference = names
			continue
		}
		if len(names) != len(reference) {
			return nil, errors.NewValidationError("features",
				"all entities must have the same set of views", names)
		}
		for i := range names {
			if names[i] != reference[i] {
				return nil, errors.NewValidationError("features",
					"all entities must have the same set of views", names)
			}
		}
	}
	return &FeatureDataset{features: features}, nil
}

// IDs returns the entity ids, sorted.
func (f *FeatureDataset) IDs() []string {
	ids := make([]string, 0, len(f.features))
	for id := range f.features {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ViewNames returns the feature view names, sorted.
func (f *FeatureDataset) ViewNames() []string {
	for _, views := range f.features {
		names := make([]string, 0, len(views))
		for v := range views {
			names = append(names, v)
		}
		sort.Strings(names)
		return names
	}
	return nil
}

// HasView reports whether the dataset carries the named view.
func (f *FeatureDataset) HasView(view string) bool {
	for _, views := range f.features {
		_, ok := views[view]
		return ok
	}
	return false
}

// Vector returns the feature vector of one entity for one view.
func (f *FeatureDataset) Vector(view, id string) ([]float64, bool) {
	views, ok := f.features[id]
	if !ok {
		return nil, false
	}
	vec, ok := views[view]
	return vec, ok
}

// FeatureMatrix stacks the per-id vectors of a view, one row per id, in the
// given order. Ids may repeat. An unknown view or any missing id fails; the
// error names the complete missing set, not just the first hit. An empty id
// slice is rejected: a zero-row matrix cannot be represented.
func (f *FeatureDataset) FeatureMatrix(view string, ids []string) (*mat.Dense, error) {
	if len(ids) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "FeatureDataset.FeatureMatrix")
	}
	if !f.HasView(view) {
		return nil, errors.NewValueError("FeatureDataset.FeatureMatrix",
			"view '"+view+"' not in the FeatureDataset")
	}

	missingSet := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := f.features[id]; !ok {
			missingSet[id] = struct{}{}
		}
	}
	if len(missingSet) > 0 {
		missing := make([]string, 0, len(missingSet))
		for id := range missingSet {
			missing = append(missing, id)
		}
		unique := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			unique[id] = struct{}{}
		}
		return nil, errors.NewDataIntegrityError("FeatureDataset.FeatureMatrix", missing, len(unique))
	}

	dim := len(f.features[ids[0]][view])
	m := mat.NewDense(len(ids), dim, nil)
	for i, id := range ids {
		vec := f.features[id][view]
		if len(vec) != dim {
			return nil, errors.NewDimensionError("FeatureDataset.FeatureMatrix", dim, len(vec), 1)
		}
		m.SetRow(i, vec)
	}
	return m, nil
}

// Copy returns a deep copy. Randomization tests perturb a copy so the
// canonical store stays intact for subsequent tests.
func (f *FeatureDataset) Copy() *FeatureDataset {
	features := make(map[string]map[string][]float64, len(f.features))
	for id, views := range f.features {
		copied := make(map[string][]float64, len(views))
		for view, vec := range views {
			copied[view] = append([]float64(nil), vec...)
		}
		features[id] = copied
	}
	return &FeatureDataset{features: features}
}

// Randomize perturbs the given views in place with the selected mode. Views
// not listed are untouched. Call Copy first when the canonical store must
// survive.
func (f *FeatureDataset) Randomize(views []string, mode RandMode, seed int64) error {
	for _, view := range views {
		if !f.HasView(view) {
			return errors.NewValueError("FeatureDataset.Randomize",
				"view '"+view+"' not in the FeatureDataset")
		}
	}

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	switch mode {
	case RandPermutation:
		// One permutation of the entity ids, shared by every requested view,
		// so an entity takes over all the listed views of the same donor.
		ids := f.IDs()
		donors := append([]string(nil), ids...)
		r.Shuffle(len(donors), func(i, j int) {
			donors[i], donors[j] = donors[j], donors[i]
		})

		original := make(map[string]map[string][]float64, len(ids))
		for _, id := range ids {
			snapshot := make(map[string][]float64, len(views))
			for _, view := range views {
				snapshot[view] = f.features[id][view]
			}
			original[id] = snapshot
		}
		for i, id := range ids {
			for _, view := range views {
				f.features[id][view] = append([]float64(nil), original[donors[i]][view]...)
			}
		}

	case RandGaussian:
		for _, view := range views {
			for _, id := range f.IDs() {
				vec := f.features[id][view]
				mean := stat.Mean(vec, nil)
				std := popStdDev(vec, mean)
				fresh := make([]float64, len(vec))
				for i := range fresh {
					fresh[i] = r.NormFloat64()*std + mean
				}
				f.features[id][view] = fresh
			}
		}

	case RandZeroing:
		for _, view := range views {
			for _, id := range f.IDs() {
				f.features[id][view] = make([]float64, len(f.features[id][view]))
			}
		}

	default:
		return errors.NewConfigurationError("FeatureDataset.Randomize", "randomization mode", string(mode),
			string(RandPermutation), string(RandGaussian), string(RandZeroing))
	}
	return nil
}

// popStdDev is the population standard deviation around a known mean.
func popStdDev(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
