package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	Listen    string    `yaml:"listen"`
	Admin     Admin     `yaml:"admin"`
	Logger    Logger    `yaml:"logger"`
	Storage   Storage   `yaml:"storage"`
	Auth      Auth      `yaml:"auth"`
	Judge     Judge     `yaml:"judge"`
	Finalizer Finalizer `yaml:"finalizer"`
	CORS      CORS      `yaml:"cors"`
}

type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Storage struct {
	Database string `yaml:"database"`
}

type Auth struct {
	JWT JWT `yaml:"jwt"`
}

type JWT struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

// Duration wraps time.Duration so yaml values can be written as "500ms" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Judge configures the client for the external code-execution service.
type Judge struct {
	URL          string   `yaml:"url"`
	AuthToken    string   `yaml:"auth_token"`
	PollInterval Duration `yaml:"poll_interval"`
	PollBackoff  Duration `yaml:"poll_backoff_cap"`
	MaxWait      Duration `yaml:"max_wait"`
	Workers      int      `yaml:"workers"`
}

type Finalizer struct {
	Interval Duration `yaml:"interval"`
}

type Admin struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.Judge.URL == "" {
		return nil, fmt.Errorf("judge.url must be configured")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Judge.PollInterval <= 0 {
		c.Judge.PollInterval = Duration(time.Second)
	}
	if c.Judge.PollBackoff <= 0 {
		c.Judge.PollBackoff = Duration(8 * time.Second)
	}
	if c.Judge.MaxWait <= 0 {
		c.Judge.MaxWait = Duration(2 * time.Minute)
	}
	if c.Judge.Workers <= 0 {
		c.Judge.Workers = 8
	}
	if c.Finalizer.Interval <= 0 {
		c.Finalizer.Interval = Duration(5 * time.Minute)
	}
}
