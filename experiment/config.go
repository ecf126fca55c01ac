package experiment

import (
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/drevalgo/dataset"
	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// Config is the YAML description of an experiment run. Omitted numeric fields
// take the runner defaults; random_seed follows the zero-means-unset
// convention of Options.Seed.
type Config struct {
	RunID              string              `yaml:"run_id"`
	PathOut            string              `yaml:"path_out"`
	ResponsePath       string              `yaml:"response_path"`
	FeaturePath        string              `yaml:"feature_path"`
	TestMode           string              `yaml:"test_mode"`
	NSplits            int                 `yaml:"n_splits"`
	ValidationRatio    float64             `yaml:"validation_ratio"`
	Seed               int64               `yaml:"random_seed"`
	Metric             string              `yaml:"metric"`
	Models             []string            `yaml:"models"`
	Parallel           bool                `yaml:"parallel"`
	Overwrite          bool                `yaml:"overwrite"`
	RandomizationMode  string              `yaml:"randomization_mode"`
	RandomizationTests map[string][]string `yaml:"randomization_tests"`
}

// LoadConfig reads and parses a YAML experiment configuration.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "LoadConfig")
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "LoadConfig")
	}
	return &cfg, nil
}

// Options validates the configuration and converts it into runner options.
// An empty run id gets a generated one so repeated runs do not collide.
func (c *Config) Options() (Options, error) {
	if c.ResponsePath == "" {
		return Options{}, errors.NewValidationError("response_path", "must not be empty", c.ResponsePath)
	}
	if len(c.Models) == 0 {
		return Options{}, errors.NewValidationError("models", "at least one model is required", c.Models)
	}

	mode, err := dataset.ParseSplitMode(c.TestMode)
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		PathOut:            c.PathOut,
		RunID:              c.RunID,
		TestMode:           mode,
		NSplits:            c.NSplits,
		ValidationRatio:    c.ValidationRatio,
		Seed:               c.Seed,
		Metric:             c.Metric,
		FeaturePath:        c.FeaturePath,
		RandomizationTests: c.RandomizationTests,
		Parallel:           c.Parallel,
		Overwrite:          c.Overwrite,
	}
	if opts.PathOut == "" {
		opts.PathOut = "results"
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if c.RandomizationMode != "" {
		randMode, err := dataset.ParseRandMode(c.RandomizationMode)
		if err != nil {
			return Options{}, err
		}
		opts.RandomizationMode = randMode
	}
	return opts, nil
}
