// Package paths resolves configuration and data directory locations.
//
// Both directories default to hidden directories under the working
// directory, so a catalog lives next to the project that uses it. The
// platform directories returned by UserConfigDir and UserDataDir are used
// when the --global flag asks for a per-user catalog instead.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".tagshelf"
	DefaultDataDirName   = ".tagshelf-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TAGSHELF_CONFIG_DIR"
	EnvDataDir   = "TAGSHELF_DATA_DIR"
)

const appName = "tagshelf"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// UserConfigDir returns the platform-specific per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/tagshelf (fallback ~/.config/tagshelf)
// macOS:   ~/Library/Application Support/tagshelf
// Windows: %APPDATA%/tagshelf
func UserConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// UserDataDir returns the platform-specific per-user data directory.
//
// Linux:   $XDG_DATA_HOME/tagshelf (fallback ~/.local/share/tagshelf)
// macOS:   ~/Library/Application Support/tagshelf/data
// Windows: %APPDATA%/tagshelf/data
func UserDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "data"), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > TAGSHELF_CONFIG_DIR env > default.
//
// The default is $(CWD)/.tagshelf, or UserConfigDir when global is set.
func ResolveConfigDir(flag string, global bool) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	if global {
		return UserConfigDir()
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > TAGSHELF_DATA_DIR env > default.
//
// The default is $(CWD)/.tagshelf-db, or UserDataDir when global is set.
func ResolveDataDir(flag, configYAMLValue string, global bool) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if global {
		return UserDataDir()
	}
	return cwdJoin(DefaultDataDirName)
}

func cwdJoin(name string) (string, error) {
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
