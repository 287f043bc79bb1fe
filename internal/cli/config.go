package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/internal/fuzzy"
	"github.com/mesh-intelligence/tagshelf/internal/repeat"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir         = "data_dir"
	cfgKeyLogLevel        = "log_level"
	cfgKeySearchMode      = "search.mode"
	cfgKeySearchThreshold = "search.threshold"
	cfgKeySearchDistance  = "search.distance"
	cfgKeyDeletePolicy    = "categories.delete_policy"
	cfgKeyHoldInterval    = "weights.hold_interval"

	defaultLogLevel = "warn"
)

// settings is config.yaml after defaults and validation.
type settings struct {
	DataDir      string
	LogLevel     slog.Level
	Search       fuzzy.Options
	DeletePolicy catalog.DeletePolicy
	HoldInterval time.Duration
}

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	DataDir    string           `yaml:"data_dir,omitempty"`
	LogLevel   string           `yaml:"log_level"`
	Search     searchConfig     `yaml:"search"`
	Categories categoriesConfig `yaml:"categories"`
	Weights    weightsConfig    `yaml:"weights"`
}

type searchConfig struct {
	Mode      string  `yaml:"mode"`
	Threshold float64 `yaml:"threshold"`
	Distance  int     `yaml:"distance"`
}

type categoriesConfig struct {
	DeletePolicy string `yaml:"delete_policy"`
}

type weightsConfig struct {
	HoldInterval string `yaml:"hold_interval"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		DataDir:  dataDir,
		LogLevel: defaultLogLevel,
		Search: searchConfig{
			Mode:      string(fuzzy.ModeApproximate),
			Threshold: fuzzy.DefaultThreshold,
			Distance:  fuzzy.DefaultDistance,
		},
		Categories: categoriesConfig{DeletePolicy: string(catalog.PolicyCascade)},
		Weights:    weightsConfig{HoldInterval: repeat.DefaultInterval.String()},
	}
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// directory or file is not an error: every key has a default.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeySearchMode, string(fuzzy.ModeApproximate))
	v.SetDefault(cfgKeySearchThreshold, fuzzy.DefaultThreshold)
	v.SetDefault(cfgKeySearchDistance, fuzzy.DefaultDistance)
	v.SetDefault(cfgKeyDeletePolicy, string(catalog.PolicyCascade))
	v.SetDefault(cfgKeyHoldInterval, repeat.DefaultInterval)

	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, errs.Wrap(err, errs.CodeConfigInvalid, "stat config file", errs.Field("path", path))
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, errs.Wrap(err, errs.CodeConfigInvalid, "read config", errs.Field("path", path))
	}
	return v, nil
}

// settingsFrom validates every key and converts it to its runtime type.
func settingsFrom(v *viper.Viper) (settings, error) {
	invalid := func(key string, err error) (settings, error) {
		return settings{}, errs.Wrap(err, errs.CodeConfigInvalid, "invalid config", errs.Field("key", key))
	}

	level, err := parseLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return invalid(cfgKeyLogLevel, err)
	}
	mode, err := fuzzy.ParseMode(v.GetString(cfgKeySearchMode))
	if err != nil {
		return invalid(cfgKeySearchMode, err)
	}
	search := fuzzy.Options{
		Mode:      mode,
		Threshold: v.GetFloat64(cfgKeySearchThreshold),
		Distance:  v.GetInt(cfgKeySearchDistance),
	}
	if err := search.Validate(); err != nil {
		return invalid(cfgKeySearchThreshold, err)
	}
	policy, err := catalog.ParseDeletePolicy(v.GetString(cfgKeyDeletePolicy))
	if err != nil {
		return invalid(cfgKeyDeletePolicy, err)
	}
	hold := v.GetDuration(cfgKeyHoldInterval)
	if hold <= 0 {
		return invalid(cfgKeyHoldInterval, fmt.Errorf("hold interval must be positive, got %q", v.GetString(cfgKeyHoldInterval)))
	}

	return settings{
		DataDir:      v.GetString(cfgKeyDataDir),
		LogLevel:     level,
		Search:       search,
		DeletePolicy: policy,
		HoldInterval: hold,
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns false.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := defaultConfigFile(dataDir)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func parseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = defaultLogLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
