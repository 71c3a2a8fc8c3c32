package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultVersion is reported when neither APP_VERSION nor a VERSION file is available
const DefaultVersion = "0.1.0"

// GetVersion returns version from environment variable or the VERSION file
func GetVersion() string {
	// CI/CD sets APP_VERSION
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}
	return getBaseVersion()
}

// getBaseVersion reads the base version from a VERSION file in the working
// directory or its parent
func getBaseVersion() string {
	for _, p := range []string{"VERSION", filepath.Join("..", "VERSION")} {
		if content, err := os.ReadFile(p); err == nil {
			if v := strings.TrimSpace(string(content)); v != "" {
				return v
			}
		}
	}
	return DefaultVersion
}
