// Package config resolves pipeline configuration from flags, REPOTREND_
// environment variables and an optional YAML file, in that precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys. Each maps to a flag of the same name and to the
// environment variable REPOTREND_<KEY> with dashes replaced by underscores.
const (
	KeyConfigFile     = "config"
	KeyGitHubToken    = "github-token"
	KeyDBPath         = "db-path"
	KeyArchiveURL     = "archive-url"
	KeyTrendingURL    = "trending-url"
	KeySampledHours   = "sampled-hours"
	KeyLookbackDays   = "lookback-days"
	KeyTopN           = "top-n"
	KeyBackfillDays   = "backfill-days"
	KeyMaxRetries     = "max-retries"
	KeyLogLevel       = "log-level"
	envPrefix         = "REPOTREND"
	defaultConfigName = ".repotrend"
)

// Config holds the validated pipeline configuration.
type Config struct {
	GitHubToken    string
	DBPath         string
	ArchiveBaseURL string
	TrendingURL    string
	SampledHours   []int
	LookbackDays   int
	TopN           int
	BackfillDays   int
	MaxRetries     int
	LogLevel       slog.Level
}

// HasGitHubToken reports whether metadata calls will be authenticated.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// NewViper returns a viper instance with defaults and environment binding in
// place. Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The conventional GitHub variable is honored when the prefixed one is unset.
	_ = v.BindEnv(KeyGitHubToken, envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	v.SetDefault(KeyDBPath, "repotrend.db")
	v.SetDefault(KeyArchiveURL, "https://data.gharchive.org")
	v.SetDefault(KeyTrendingURL, "https://github.com/trending?since=daily")
	v.SetDefault(KeySampledHours, "12,23")
	v.SetDefault(KeyLookbackDays, 7)
	v.SetDefault(KeyTopN, 50)
	v.SetDefault(KeyBackfillDays, 30)
	v.SetDefault(KeyMaxRetries, 3)
	v.SetDefault(KeyLogLevel, "info")

	return v
}

// Load reads the config file, if any, and returns a validated Config. An
// explicitly named file must exist; the default .repotrend.yaml in the
// working or home directory is optional.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	hours, err := ParseHours(v.GetString(KeySampledHours))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeySampledHours, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	cfg := &Config{
		GitHubToken:    strings.TrimSpace(v.GetString(KeyGitHubToken)),
		DBPath:         v.GetString(KeyDBPath),
		ArchiveBaseURL: v.GetString(KeyArchiveURL),
		TrendingURL:    v.GetString(KeyTrendingURL),
		SampledHours:   hours,
		LookbackDays:   v.GetInt(KeyLookbackDays),
		TopN:           v.GetInt(KeyTopN),
		BackfillDays:   v.GetInt(KeyBackfillDays),
		MaxRetries:     v.GetInt(KeyMaxRetries),
		LogLevel:       level,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("%s must not be empty", KeyDBPath)
	case c.LookbackDays < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyLookbackDays, c.LookbackDays)
	case c.TopN < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyTopN, c.TopN)
	case c.BackfillDays < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyBackfillDays, c.BackfillDays)
	case c.MaxRetries < 0:
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxRetries, c.MaxRetries)
	}
	return nil
}

// ParseHours parses a comma-separated list of distinct UTC hours in [0, 23]
// and returns them sorted.
func ParseHours(s string) ([]int, error) {
	var hours []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid hour %q: %w", part, err)
		}
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("hour %d out of range [0, 23]", h)
		}
		if slices.Contains(hours, h) {
			return nil, fmt.Errorf("hour %d listed twice", h)
		}
		hours = append(hours, h)
	}
	if len(hours) == 0 {
		return nil, errors.New("at least one hour is required")
	}
	slices.Sort(hours)
	return hours, nil
}
