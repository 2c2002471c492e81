package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultBaseURL is the decodevin endpoint of the NHTSA vPIC API.
const DefaultBaseURL = "https://vpic.nhtsa.dot.gov/api/vehicles/decodevin/"

type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	NHTSA      NHTSA      `yaml:"nhtsa"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug           *bool           `yaml:"debug"`
	Timeout         time.Duration   `yaml:"timeout"`
	TLSClientConfig TLSClientConfig `yaml:"tls_client_config"`
	Proxy           Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type NHTSA struct {
	BaseURL string `yaml:"base_url"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the YAML configuration at configPath.
// An empty path yields an empty configuration, so every setting falls back to its default.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	if configPath == "" {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}

// GetBaseURL returns the configured decodevin endpoint or the public NHTSA one.
func GetBaseURL(cfg *Config) string {
	if cfg == nil {
		return DefaultBaseURL
	}
	return SetThen(cfg.NHTSA.BaseURL, DefaultBaseURL)
}
