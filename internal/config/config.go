// Package config loads runtime settings from defaults, an optional
// config.yaml, an optional .env file and AVATAR_MCP_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// AVATAR_MCP_LOG_LEVEL for log.level.
const EnvPrefix = "AVATAR_MCP"

// Config is the full runtime configuration.
type Config struct {
	Log struct {
		Level string `mapstructure:"level"`
		Env   string `mapstructure:"env"`
	} `mapstructure:"log"`
	Crop struct {
		MaxSurfacePixels int           `mapstructure:"max_surface_pixels"`
		MaxDimension     int           `mapstructure:"max_dimension"`
		MaxSourceBytes   int64         `mapstructure:"max_source_bytes"`
		FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
		CacheSources     bool          `mapstructure:"cache_sources"`
		CacheEntries     int           `mapstructure:"cache_entries"`
	} `mapstructure:"crop"`
	Profile struct {
		Backend         string `mapstructure:"backend"`
		AllowUnverified bool   `mapstructure:"allow_unverified"`
	} `mapstructure:"profile"`
	Storage struct {
		Backend      string `mapstructure:"backend"`
		LocalPath    string `mapstructure:"local_path"`
		LocalBaseURL string `mapstructure:"local_base_url"`
	} `mapstructure:"storage"`
	Firebase struct {
		ProjectID       string `mapstructure:"project_id"`
		CredentialsFile string `mapstructure:"credentials_file"`
		StorageBucket   string `mapstructure:"storage_bucket"`
	} `mapstructure:"firebase"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		APIKey    string `mapstructure:"api_key"`
		APISecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Auth struct {
		SuccessPath string `mapstructure:"success_path"`
		ErrorPath   string `mapstructure:"error_path"`
	} `mapstructure:"auth"`
}

var defaults = map[string]any{
	"log.level":                 "info",
	"log.env":                   "development",
	"crop.max_surface_pixels":   64 << 20,
	"crop.max_dimension":        32767,
	"crop.max_source_bytes":     64 << 20,
	"crop.fetch_timeout":        30 * time.Second,
	"crop.cache_sources":        false,
	"crop.cache_entries":        32,
	"profile.backend":           "memory",
	"profile.allow_unverified":  true,
	"storage.backend":           "local",
	"storage.local_path":        "./data/uploads",
	"storage.local_base_url":    "/media",
	"firebase.project_id":       "",
	"firebase.credentials_file": "",
	"firebase.storage_bucket":   "",
	"cloudinary.cloud_name":     "",
	"cloudinary.api_key":        "",
	"cloudinary.api_secret":     "",
	"redis.addr":                "",
	"redis.password":            "",
	"redis.db":                  0,
	"redis.ttl":                 5 * time.Minute,
	"http.addr":                 "",
	"auth.success_path":         "/dashboard",
	"auth.error_path":           "/error",
}

// Load reads the configuration. dir is searched for config.yaml and .env;
// neither file is required.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = "."
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend selections and the settings they require.
func (c *Config) Validate() error {
	switch c.Profile.Backend {
	case "memory":
	case "firestore":
		if c.Firebase.ProjectID == "" {
			return errors.New("profile.backend=firestore requires firebase.project_id")
		}
	default:
		return fmt.Errorf("unknown profile.backend %q", c.Profile.Backend)
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalPath == "" {
			return errors.New("storage.backend=local requires storage.local_path")
		}
	case "firebase":
		if c.Firebase.ProjectID == "" || c.Firebase.StorageBucket == "" {
			return errors.New("storage.backend=firebase requires firebase.project_id and firebase.storage_bucket")
		}
	case "cloudinary":
		if c.Cloudinary.CloudName == "" {
			return errors.New("storage.backend=cloudinary requires cloudinary.cloud_name")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}

	if c.Crop.MaxSurfacePixels <= 0 || c.Crop.MaxDimension <= 0 {
		return errors.New("crop surface limits must be positive")
	}
	return nil
}

// UsesFirebase reports whether any backend needs a Firebase app.
func (c *Config) UsesFirebase() bool {
	return c.Profile.Backend == "firestore" || c.Storage.Backend == "firebase" || !c.Profile.AllowUnverified
}
