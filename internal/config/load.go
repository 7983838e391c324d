package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "LENDING"
	configFileName = "lending"
	configFileType = "yaml"
)

var (
	ErrReadingConfigFileFailed = errors.New("reading config file failed")
	ErrUnmarshallingFailed     = errors.New("unmarshalling config failed")
	ErrValidationFailed        = errors.New("config validation failed")
)

// LoadOption adjusts where Load looks for the config file.
type LoadOption func(*loadOptions)

type loadOptions struct {
	configFile  string
	searchPaths []string
}

// WithConfigFile makes Load read exactly this file. A missing file is an error.
func WithConfigFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithSearchPaths replaces the directories searched for lending.yaml.
func WithSearchPaths(paths ...string) LoadOption {
	return func(o *loadOptions) {
		o.searchPaths = paths
	}
}

// Load builds the Config: defaults, then lending.yaml if found, then LENDING_* env vars.
// The env var for a key is the upper-cased key with dots replaced by underscores,
// e.g. LENDING_POSTGRES_DSN for postgres.dsn.
func Load(opts ...LoadOption) (*Config, error) {
	options := loadOptions{searchPaths: []string{".", "$HOME/.config/lending"}}
	for _, opt := range opts {
		opt(&options)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, options); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Join(ErrUnmarshallingFailed, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfigFile(v *viper.Viper, options loadOptions) error {
	if options.configFile != "" {
		v.SetConfigFile(options.configFile)

		if err := v.ReadInConfig(); err != nil {
			return errors.Join(ErrReadingConfigFileFailed, err)
		}

		return nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	for _, path := range options.searchPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return errors.Join(ErrReadingConfigFileFailed, err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverSQLite)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.replica_dsn", "")
	v.SetDefault("postgres.adapter", AdapterPGXPool)
	v.SetDefault("postgres.max_conns", 8)
	v.SetDefault("postgres.min_conns", 2)

	v.SetDefault("sqlite.path", "lending.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("retry.max_attempts", 6)
	v.SetDefault("retry.base_delay", "10ms")

	v.SetDefault("sweep.interval", "1m")
	v.SetDefault("sweep.concurrency", 4)

	v.SetDefault("metrics.addr", ":9090")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateStoreSettings, Config{})

	return v
}

// validateStoreSettings requires the settings of the selected driver.
func validateStoreSettings(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}

	switch cfg.Store.Driver {
	case DriverPostgres:
		if cfg.Postgres.DSN == "" {
			sl.ReportError(cfg.Postgres.DSN, "Postgres.DSN", "DSN", "required_with_driver", DriverPostgres)
		}
	case DriverSQLite:
		if cfg.SQLite.Path == "" {
			sl.ReportError(cfg.SQLite.Path, "SQLite.Path", "Path", "required_with_driver", DriverSQLite)
		}
	}
}

// Validate checks cfg and wraps every violation into ErrValidationFailed.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var violations validator.ValidationErrors
		if !errors.As(err, &violations) {
			return errors.Join(ErrValidationFailed, err)
		}

		messages := make([]string, 0, len(violations))
		for _, violation := range violations {
			messages = append(messages, fmt.Sprintf("%s: failed on '%s'", violation.Namespace(), violation.Tag()))
		}

		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(messages, "; "))
	}

	return nil
}
