// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub GitHubConfig
	Store  StoreConfig
}

// GitHubConfig holds the GitHub App credentials and endpoint configuration.
type GitHubConfig struct {
	// AppID is the numeric GitHub App identifier, as issued by GitHub.
	AppID string

	// PrivateKeyPath points at the PEM-encoded RSA private key for the app.
	PrivateKeyPath string

	// Domain selects github.com or a GitHub Enterprise host.
	Domain string
}

// StoreConfig holds local issue store configuration.
type StoreConfig struct {
	// Path is the sqlite database file backing the local mirror.
	Path string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("github.app_id", "GITHUB_APP_ID")
	v.BindEnv("github.private_key_path", "GITHUB_PRIVATE_KEY_PATH")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("store.path", "ISSUEMIRROR_DB_PATH")

	config := &Config{
		GitHub: GitHubConfig{
			AppID:          v.GetString("github.app_id"),
			PrivateKeyPath: v.GetString("github.private_key_path"),
			Domain:         v.GetString("github.domain"),
		},
		Store: StoreConfig{
			Path: v.GetString("store.path"),
		},
	}

	if config.Store.Path == "" {
		config.Store.Path = "issuemirror.db"
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigurationError reports required configuration that is absent. It is
// fatal at startup: the credential-lifecycle components cannot be constructed
// without the app id and private key.
type ConfigurationError struct {
	MissingVars []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required environment variables: %v", e.MissingVars)
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.AppID == "" {
		missingVars = append(missingVars, "GITHUB_APP_ID")
	}
	if config.GitHub.PrivateKeyPath == "" {
		missingVars = append(missingVars, "GITHUB_PRIVATE_KEY_PATH")
	}

	if len(missingVars) > 0 {
		return &ConfigurationError{MissingVars: missingVars}
	}

	return nil
}
