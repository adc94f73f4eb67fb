package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll returns all config key/value pairs from the current config. Secret
// values are masked rather than omitted so operators can see whether one is
// set.
func ShowAll(cfg Config) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		val := fmt.Sprintf("%v", s.extract(cfg))
		if s.secret && val != "" {
			val = "(set)"
		}
		result = append(result, KeyInfo{Key: s.key, EnvVar: s.env, Value: val})
	}
	return result
}

// ValidKeys returns the list of config key names.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		keys = append(keys, s.key)
	}
	return keys
}

// fileDoc mirrors Config for file rendering. session.ttl is a string so the
// file carries "30m0s" instead of a nanosecond integer.
type fileDoc struct {
	Server struct {
		Addr     string `yaml:"addr"`
		BaseURL  string `yaml:"base_url"`
		APIToken string `yaml:"api_token"`
	} `yaml:"server"`
	Model struct {
		Dir string `yaml:"dir"`
	} `yaml:"model"`
	Corrections struct {
		Path string `yaml:"path"`
	} `yaml:"corrections"`
	Session struct {
		TTL        string `yaml:"ttl"`
		MaxRecords int    `yaml:"max_records"`
	} `yaml:"session"`
	Rate struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// YAML renders the configuration as a config file document.
func (c Config) YAML() ([]byte, error) {
	var doc fileDoc
	doc.Server.Addr = c.Server.Addr
	doc.Server.BaseURL = c.Server.BaseURL
	doc.Server.APIToken = c.Server.APIToken
	doc.Model.Dir = c.Model.Dir
	doc.Corrections.Path = c.Corrections.Path
	doc.Session.TTL = c.Session.TTL.String()
	doc.Session.MaxRecords = c.Session.MaxRecords
	doc.Rate.RPS = c.Rate.RPS
	doc.Rate.Burst = c.Rate.Burst
	doc.Log.Level = c.Log.Level

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering configuration: %w", err)
	}
	return out, nil
}

// DefaultConfigPath returns ~/.fakenews/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".fakenews", "config.yaml"), nil
}

// WriteDefault creates a commented default config file at path. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	body, err := Default().YAML()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString("# fakenews configuration\n")
	buf.WriteString("#\n")
	buf.WriteString("# Priority, highest first: FAKENEWS_* environment variables,\n")
	buf.WriteString("# this file, built-in defaults.\n\n")
	buf.Write(body)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
