package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// getConfigDir returns the configuration directory for bulwark.
func getConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "bulwark")
}

// getDataDir returns the data directory for bulwark.
// This follows XDG on Linux, Application Support on macOS, and LocalAppData on Windows.
func getDataDir() string {
	switch runtime.GOOS {
	case "linux":
		// Follow XDG Base Directory Specification
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, "bulwark")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "bulwark")

	case "darwin":
		// macOS: Use Application Support (same as config)
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "bulwark")

	case "windows":
		// Windows: Use LocalAppData
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "bulwark")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Local", "bulwark")

	default:
		// Fallback: use config directory
		return getConfigDir()
	}
}

// getCacheDir returns the cache directory for bulwark.
func getCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory
		home, _ := os.UserHomeDir()
		switch runtime.GOOS {
		case "darwin":
			cacheDir = filepath.Join(home, "Library", "Caches")
		case "windows":
			cacheDir = filepath.Join(home, "AppData", "Local")
		default:
			cacheDir = filepath.Join(home, ".cache")
		}
	}
	return filepath.Join(cacheDir, "bulwark")
}

// EnsureDirectories creates all required directories if they don't exist.
func EnsureDirectories() error {
	paths := ResolvePaths()

	dirs := []string{
		paths.ConfigDir,
		paths.DataDir,
		paths.CacheDir,
		paths.BackupsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	return nil
}
