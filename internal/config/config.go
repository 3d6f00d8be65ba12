package config

import (
	"embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/dashboard.yaml
var defaultsFS embed.FS

const (
	defaultBaseURL  = "docs"
	defaultPort     = 8082
	defaultTimezone = "America/Santiago"
)

// Config is the full dashboard configuration.
type Config struct {
	Title   string        `yaml:"title"`
	Data    DataConfig    `yaml:"data"`
	Display DisplayConfig `yaml:"display"`
	Server  ServerConfig  `yaml:"server"`
}

// DataConfig locates the two JSON documents produced by the pipeline.
type DataConfig struct {
	BaseURL           string `yaml:"base_url"` // http(s)://, file:// or a local directory
	MetaPath          string `yaml:"meta_path"`
	OpportunitiesPath string `yaml:"opportunities_path"`
	UserAgent         string `yaml:"user_agent,omitempty"`
}

type DisplayConfig struct {
	Timezone   string `yaml:"timezone"`
	IssueHost  string `yaml:"issue_host"`
	IssueLabel string `yaml:"issue_label"`
	BannerHTML string `yaml:"banner_html,omitempty"` // sanitized before rendering
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// Load reads the configuration at path, or the embedded defaults when path
// is empty, and then applies environment overrides.
func Load(path string) (*Config, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = defaultsFS.ReadFile("config/dashboard.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes YAML after expanding ${VAR} references from the environment.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DATA_BASE_URL")); v != "" {
		c.Data.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, o)
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Radar de oportunidades"
	}
	if c.Data.BaseURL == "" {
		c.Data.BaseURL = defaultBaseURL
	}
	if c.Data.MetaPath == "" {
		c.Data.MetaPath = "data/meta.json"
	}
	if c.Data.OpportunitiesPath == "" {
		c.Data.OpportunitiesPath = "data/opportunities.json"
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = defaultTimezone
	}
	if c.Display.IssueHost == "" {
		c.Display.IssueHost = "https://github.com"
	}
	if c.Display.IssueLabel == "" {
		c.Display.IssueLabel = "reviewed"
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
}
