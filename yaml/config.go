// Package yaml loads extraction configuration from YAML files.
package yaml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gutachter/vorlage"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a configuration file and applies it over the defaults.
// A missing file is not an error: the defaults are returned unchanged, so
// callers can always pass their conventional config path.
func LoadConfig(path string) (vorlage.Config, error) {
	cfg := vorlage.DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, vorlage.Errorf(vorlage.EINVALID, "parse config %q: %s", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
