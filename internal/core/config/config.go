package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Marketplace holds the marketplace backend connection details.
	Marketplace MarketplaceConfig `mapstructure:",squash"`

	// Tracker holds the per-order polling and reconciliation settings.
	Tracker TrackerConfig `mapstructure:",squash"`

	// Cache holds the redis snapshot cache settings.
	Cache CacheConfig `mapstructure:",squash"`
}

// MarketplaceConfig holds the connection details for the marketplace backend.
type MarketplaceConfig struct {
	// URL is the base URL of the marketplace REST API.
	URL string `mapstructure:"MARKETPLACE_URL" required:"true"`
	// Token is the bearer token attached to every backend request. An empty
	// token aborts each operation client-side before any network call.
	Token string `mapstructure:"MARKETPLACE_TOKEN"`
}

// TrackerConfig holds the order-progress tracker tuning knobs.
type TrackerConfig struct {
	// PollIntervalMs is the delay between status fetches for a tracked order.
	PollIntervalMs int `mapstructure:"POLL_INTERVAL_MS" default:"5000"`
	// ReconcileCycles is how many divergent poll cycles an optimistic update
	// may survive before the server is trusted and the overlay discarded.
	ReconcileCycles int `mapstructure:"RECONCILE_CYCLES" default:"3"`
}

// PollInterval returns the poll interval as a duration.
func (c TrackerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// CacheConfig holds the order snapshot cache settings.
type CacheConfig struct {
	// RedisURL is the redis connection string; empty disables the snapshot cache.
	RedisURL string `mapstructure:"REDIS_URL"`
	// SnapshotTTLSeconds is how long a cached order list stays servable.
	SnapshotTTLSeconds int `mapstructure:"SNAPSHOT_TTL_SECONDS" default:"300"`
}

// SnapshotTTL returns the snapshot TTL as a duration.
func (c CacheConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
