package config

import (
	"os"
	"path/filepath"
)

// FindConfigPath returns the first existing config file location, or ""
// if none exists.
func FindConfigPath() string {
	if path := os.Getenv("BLOCKBASE_CONFIG"); path != "" {
		return path
	}

	candidates := []string{"./blockbase.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "blockbase", "config.yaml"))
	}
	candidates = append(candidates, "/etc/blockbase/config.yaml")

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
