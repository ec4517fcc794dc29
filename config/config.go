// Package config defines the comparison run configuration and its
// layered loading: defaults, then an optional YAML file, then
// WDBC_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tksato/wdbc/pkg/errors"
)

// KnownModels lists the adapter names that can appear in Models.
var KnownModels = []string{"random_forest", "gradient_boosting", "xgboost", "mlp"}

// Config contains the settings for one comparison run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataPath points at the diagnostic CSV file.
	DataPath string `koanf:"data_path"`

	// TrainFraction of records assigned to the training partition.
	TrainFraction float64 `koanf:"train_fraction"`

	// Seed drives the partition shuffle and every model's randomness.
	Seed int64 `koanf:"seed"`

	// Threshold is the score cutoff for the confusion matrix.
	Threshold float64 `koanf:"threshold"`

	// Stratify partitions each diagnosis class separately so both
	// partitions keep the dataset's class balance.
	Stratify bool `koanf:"stratify"`

	// SortByAUC orders the report table best model first.
	SortByAUC bool `koanf:"sort_by_auc"`

	// Models selects which adapters to run. Empty means all.
	Models []string `koanf:"models"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		TrainFraction: 0.8,
		Seed:          42,
		Threshold:     0.5,
	}
}

// Load builds a Config by layering defaults, an optional YAML file,
// and environment variables. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML): the given path, or WDBC_CONFIG when path is empty
//  3. env (prefix WDBC_), e.g. WDBC_TRAIN_FRACTION=0.7
func Load(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("WDBC_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "config: loading %s", path)
		}
	}

	envProvider := env.Provider("WDBC_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "wdbc_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "config: loading environment")
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and model names.
func (c *Config) Validate() error {
	const op = "config.Validate"

	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		return errors.NewValueError(op,
			fmt.Sprintf("train_fraction must be in (0, 1), got %v", c.TrainFraction))
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.NewValueError(op,
			fmt.Sprintf("threshold must be in [0, 1], got %v", c.Threshold))
	}
	for _, name := range c.Models {
		if !isKnownModel(name) {
			return errors.NewValueError(op,
				fmt.Sprintf("unknown model %q, valid models: %s", name, strings.Join(KnownModels, ", ")))
		}
	}
	return nil
}

// SelectedModels returns the configured model names, defaulting to
// every known model in canonical order.
func (c *Config) SelectedModels() []string {
	if len(c.Models) == 0 {
		return append([]string(nil), KnownModels...)
	}
	return c.Models
}

func isKnownModel(name string) bool {
	for _, known := range KnownModels {
		if name == known {
			return true
		}
	}
	return false
}
