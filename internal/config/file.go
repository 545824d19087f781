package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from the human-readable YAML
// form ("5s", "10m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// PollConfig overrides the polling schedule.
type PollConfig struct {
	MaxAttempts  int      `yaml:"max_attempts,omitempty"`
	FastInterval Duration `yaml:"fast_interval,omitempty"`
	FastAttempts int      `yaml:"fast_attempts,omitempty"`
	SlowInterval Duration `yaml:"slow_interval,omitempty"`
}

// FileConfig is the optional argorun.yml configuration file. Every field is
// optional; flags take precedence over file values.
type FileConfig struct {
	Host          string      `yaml:"host,omitempty"`
	TLSSkipVerify bool        `yaml:"tls_skip_verify,omitempty"`
	CreatorLabel  string      `yaml:"creator_label,omitempty"`
	Poll          *PollConfig `yaml:"poll,omitempty"`
}

// LoadFile reads and validates an argorun.yml file. A missing file is not an
// error; it yields an empty config.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %v", path, err)
	}
	return &cfg, nil
}

func (c *FileConfig) validate() error {
	if c.Host != "" {
		u, err := url.Parse(c.Host)
		if err != nil {
			return fmt.Errorf("invalid host %q: %v", c.Host, err)
		}
		if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("host must be an absolute http(s) URL, got %q", c.Host)
		}
	}
	if c.Poll != nil {
		if c.Poll.MaxAttempts < 0 {
			return fmt.Errorf("poll.max_attempts must not be negative")
		}
		if c.Poll.FastAttempts < 0 {
			return fmt.Errorf("poll.fast_attempts must not be negative")
		}
		if c.Poll.FastInterval < 0 || c.Poll.SlowInterval < 0 {
			return fmt.Errorf("poll intervals must not be negative")
		}
	}
	return nil
}
