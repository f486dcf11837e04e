package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/sandipan8609/fabric-migration-v1/internal/convert"
)

// Config holds the migration configuration
type Config struct {
	Conversion convert.Config `yaml:"conversion"`

	Capacity struct {
		SubscriptionID string `yaml:"subscription_id"`
		ResourceGroup  string `yaml:"resource_group"`
		Name           string `yaml:"name"`
	} `yaml:"capacity"`

	Fabric struct {
		WorkspaceID string `yaml:"workspace_id"`
		TenantID    string `yaml:"tenant_id"`
	} `yaml:"fabric"`

	Extract struct {
		StorageAccount   string `yaml:"storage_account"`
		StorageContainer string `yaml:"storage_container"`
		Workers          int    `yaml:"workers"`
		ManifestPath     string `yaml:"manifest_path"`
	} `yaml:"extract"`

	Load struct {
		Workers      int    `yaml:"workers"`
		ManifestPath string `yaml:"manifest_path"`
		MaxErrors    int    `yaml:"max_errors"`
	} `yaml:"load"`

	Migration struct {
		Retries    int    `yaml:"retries"`
		RetryDelay string `yaml:"retry_delay"`
	} `yaml:"migration"`
}

// Parser handles configuration parsing
type Parser struct{}

// NewParser creates a new configuration parser
func NewParser() *Parser {
	return &Parser{}
}

var envVarPattern = regexp.MustCompile(`\${([^}]+)}`)

// Parse reads and parses the configuration file, expanding ${VAR}
// references from the environment. Unset variables are left as-is so the
// validator can report them.
func (p *Parser) Parse(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	content := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		value := os.Getenv(match[2 : len(match)-1])
		if value == "" {
			return match
		}
		return value
	})

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	return cfg, nil
}

// Defaults returns a config pre-filled with the reference conversion
// settings and sensible worker counts.
func Defaults() *Config {
	cfg := &Config{Conversion: convert.DefaultConfig()}
	cfg.Extract.Workers = 4
	cfg.Extract.StorageContainer = "migration-staging"
	cfg.Extract.ManifestPath = "extract_manifest.json"
	cfg.Load.Workers = 4
	cfg.Load.ManifestPath = "extract_manifest.json"
	cfg.Load.MaxErrors = 10000
	cfg.Migration.Retries = 3
	cfg.Migration.RetryDelay = "5s"
	return cfg
}

// Validate checks the parts of the config every command depends on.
func (c *Config) Validate() error {
	if c.Conversion.WorkspaceID == "" {
		return fmt.Errorf("conversion.workspace_id is required")
	}
	switch c.Conversion.TargetSink {
	case convert.SinkLakehouse, convert.SinkBlob, convert.SinkBlobFS:
	default:
		return fmt.Errorf("conversion.target_sink must be one of lakehouse, blob, blobfs; got %q", c.Conversion.TargetSink)
	}
	if c.Extract.Workers < 1 {
		return fmt.Errorf("extract.workers must be at least 1")
	}
	if c.Load.Workers < 1 {
		return fmt.Errorf("load.workers must be at least 1")
	}
	return nil
}
