// Package config loads the optional checkatron.toml file: extra
// declared-type classification rules and the batch job list.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/checkatron/checkatron/internal/diff"
)

// FileName is the default name of the config file
const FileName = "checkatron.toml"

// Config is the parsed checkatron.toml content.
type Config struct {
	Types TypesConfig `toml:"types"`
	Jobs  []Job       `toml:"jobs"`
}

// TypesConfig holds classification-rule extensions. Rules listed here take
// precedence over the built-in table, so new declared-type spellings are a
// config change, not a code change.
type TypesConfig struct {
	Rules []TypeRule `toml:"rules"`
}

// TypeRule maps declared-type substrings to a comparison class.
type TypeRule struct {
	Class    string   `toml:"class"`
	Patterns []string `toml:"patterns"`
}

// Job describes one comparison in a batch run.
type Job struct {
	Name          string `toml:"name"`
	BeforeCatalog string `toml:"before_catalog"`
	AfterCatalog  string `toml:"after_catalog"`
	Keys          string `toml:"keys"`
	BeforeTable   string `toml:"before_table"`
	AfterTable    string `toml:"after_table"`
	BeforeWhere   string `toml:"before_where"`
	AfterWhere    string `toml:"after_where"`
	Relation      string `toml:"relation"`
}

// Load reads the default config file from the current directory.
// Returns nil if the file doesn't exist (configuration is optional).
func Load() (*Config, error) {
	return LoadFromPath(FileName)
}

// LoadFromPath loads a config file from the specified path.
// Returns nil if the file doesn't exist.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, rule := range cfg.Types.Rules {
		if _, err := parseClass(rule.Class); err != nil {
			return nil, fmt.Errorf("%s: types.rules[%d]: %w", path, i, err)
		}
	}

	return &cfg, nil
}

// Classifier builds the type classifier with the config's extensions
// applied. A nil receiver yields the default classifier.
func (c *Config) Classifier() *diff.Classifier {
	cl := diff.NewClassifier()
	if c == nil {
		return cl
	}
	for _, rule := range c.Types.Rules {
		class, err := parseClass(rule.Class)
		if err != nil {
			// Rejected at load time; unreachable after LoadFromPath.
			continue
		}
		cl.Extend(diff.Rule{Class: class, Substrings: upperAll(rule.Patterns)})
	}
	return cl
}

func parseClass(name string) (diff.Class, error) {
	switch name {
	case "textual":
		return diff.ClassTextual, nil
	case "numeric":
		return diff.ClassNumeric, nil
	default:
		return 0, fmt.Errorf("unknown comparison class %q (want \"textual\" or \"numeric\")", name)
	}
}

func upperAll(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToUpper(p)
	}
	return out
}
