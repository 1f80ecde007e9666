// Package config derives runtime defaults from the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/eykd/tabvet/internal/domain"
)

// ContainerRoot is the directory whose presence marks the container layout.
const ContainerRoot = "/app"

// Config holds the settings commands and the server start from. Flags
// override these values.
type Config struct {
	ConfigDir  string
	RawPath    string
	SourcePath string
	ReportDir  string
	Addr       string
	LogLevel   string
}

// Load reads configuration from environment variables.
func Load() *Config {
	info, err := os.Stat(ContainerRoot)
	return load(os.Getenv, err == nil && info.IsDir())
}

func load(getenv func(string) string, inContainer bool) *Config {
	rawDefault, sourceDefault := filepath.Join("..", "files", "raw"), filepath.Join("..", "files", "source")
	if inContainer {
		rawDefault = filepath.Join(ContainerRoot, "src", "files", "raw")
		sourceDefault = filepath.Join(ContainerRoot, "src", "files", "source")
	}

	get := func(key, defaultValue string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	return &Config{
		ConfigDir:  get("TABVET_CONFIG_DIR", filepath.Join("config", "validation_rules")),
		RawPath:    get("TABVET_RAW_PATH", rawDefault),
		SourcePath: get("TABVET_SOURCE_PATH", sourceDefault),
		ReportDir:  get("TABVET_REPORT_DIR", "."),
		Addr:       get("TABVET_ADDR", ":8080"),
		LogLevel:   get("LOG_LEVEL", ""),
	}
}

// BasePath returns the data root validated in mode.
func (c *Config) BasePath(mode domain.Mode) string {
	if mode == domain.ModeRaw {
		return c.RawPath
	}
	return c.SourcePath
}
