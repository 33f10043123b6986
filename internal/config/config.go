// Package config loads and validates per-query YAML configuration files.
// Fail-fast: a config that cannot drive a full run is rejected at load time.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is one search query's full runtime configuration.
type Config struct {
	Parser      ParserConfig   `yaml:"parser"`
	Postgres    PostgresConfig `yaml:"postgres"`
	Redis       RedisConfig    `yaml:"redis"`
	Email       EmailConfig    `yaml:"email"`
	ServiceMail EmailConfig    `yaml:"service_mail"`

	// Schedule is an optional cron spec (e.g. "@daily"). Empty means run once.
	Schedule string `yaml:"schedule"`
}

// ParserConfig drives the hh.ru search.
type ParserConfig struct {
	Area         int    `yaml:"area"`          // hh.ru region id, 1 = Москва
	SearchPeriod int    `yaml:"search_period"` // search window, days
	SearchText   string `yaml:"search_text"`
	SearchRegex  string `yaml:"search_regex"` // refining regex on vacancy titles
}

// PostgresConfig locates the snapshot database.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// URL renders a pgx-compatible connection string.
func (p PostgresConfig) URL() string {
	port := p.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(p.User), url.QueryEscape(p.Password), p.Host, port, p.Name)
}

// RedisConfig locates the Redis instance backing the run lock. An empty URL
// disables locking; the caller must then serialize runs itself.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// EmailConfig describes one SMTP delivery target. The `email` block carries
// report mail; `service_mail` carries failure notifications.
type EmailConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	Login    string   `yaml:"login"`
	Password string   `yaml:"password"`
	From     string   `yaml:"email_from"`
	To       []string `yaml:"email_to"`
	Subject  string   `yaml:"email_subject"`
}

// Configured reports whether this block names an SMTP server at all.
func (e EmailConfig) Configured() bool { return e.Server != "" }

// Load reads and validates one configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Parser.SearchText) == "" {
		return fmt.Errorf("parser.search_text is required")
	}
	if c.Parser.Area < 1 {
		return fmt.Errorf("parser.area must be a positive region id, got %d", c.Parser.Area)
	}
	if c.Parser.SearchPeriod < 1 {
		return fmt.Errorf("parser.search_period must be a positive number of days, got %d", c.Parser.SearchPeriod)
	}
	if c.Postgres.Host == "" || c.Postgres.Name == "" || c.Postgres.User == "" {
		return fmt.Errorf("postgres.host, postgres.name and postgres.user are required")
	}
	for _, block := range []struct {
		name string
		cfg  EmailConfig
	}{{"email", c.Email}, {"service_mail", c.ServiceMail}} {
		if block.cfg.Configured() && (block.cfg.From == "" || len(block.cfg.To) == 0) {
			return fmt.Errorf("%s.email_from and %s.email_to are required when %s.server is set",
				block.name, block.name, block.name)
		}
	}
	return nil
}
