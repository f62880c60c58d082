package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths.
	AppName = "gantry"
)

// GetConfigDir returns the platform-specific configuration directory for the
// application (e.g. ~/.config/gantry on Linux).
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetCacheDir returns the platform-specific cache directory for the
// application (e.g. ~/.cache/gantry on Linux).
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}
