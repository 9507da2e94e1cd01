package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourcesFile is the optional on-disk supplement to the environment
// variables above: a place to declare per-source weights and the
// exchange each symbol trades on (for market-hours gating) without
// resorting to one SOURCE_WEIGHT_<NAME> variable per source. Pointed to
// by the SOURCES_CONFIG_FILE environment variable; entirely optional.
type SourcesFile struct {
	Weights         map[string]float64 `yaml:"weights"`
	SymbolExchanges map[string]string  `yaml:"symbolExchanges"`
}

// LoadSourcesFile reads and parses path as YAML. A missing path is not
// an error: callers treat a nil return as "nothing configured".
func LoadSourcesFile(path string) (*SourcesFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}
	return &sf, nil
}

// Merge layers file-provided weights on top of env-provided ones,
// env-provided weights taking precedence since they're the more specific
// per-process override.
func (c *Config) Merge(sf *SourcesFile) {
	if sf == nil {
		return
	}
	if c.SourceWeights == nil {
		c.SourceWeights = make(map[string]float64, len(sf.Weights))
	}
	for source, w := range sf.Weights {
		key := strings.ToLower(source)
		if _, overridden := c.SourceWeights[key]; !overridden {
			c.SourceWeights[key] = w
		}
	}
}
