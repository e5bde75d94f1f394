package config

import (
	"fmt"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host" validate:"required"`
	Port            int               `mapstructure:"port" validate:"gte=1,lte=65535"`
	Database        string            `mapstructure:"database" validate:"required"`
	Username        string            `mapstructure:"username" validate:"required"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	ConnectAttempts uint              `mapstructure:"connect_attempts"`
	MigrateOnStart  bool              `mapstructure:"migrate_on_start"`
}

type AnalyticsConfig struct {
	// DailyTargetMinutes is the study-time target a day needs to reach a full
	// volume score.
	DailyTargetMinutes int `mapstructure:"daily_target_minutes" validate:"gt=0"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

// NewConfigLoader builds a loader for the given config file. An empty path
// falls back to the STUDYLEDGER_CONFIG environment variable, then to the
// default search paths.
func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	if configFile == "" {
		configFile = os.Getenv("STUDYLEDGER_CONFIG")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studyledger")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "studyledger")
	v.SetDefault("database.username", "studyledger")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("analytics.daily_target_minutes", 180)

	// The database password comes from the environment only, never from the
	// config file.
	if err := v.BindEnv("database.password", "STUDYLEDGER_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("bind STUDYLEDGER_DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("server.port", "STUDYLEDGER_PORT"); err != nil {
		return nil, fmt.Errorf("bind STUDYLEDGER_PORT environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (loader *ConfigLoader) validate(cfg *Config) error {
	err := loader.validator.Struct(cfg)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate configuration: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fieldErr.Translate(loader.translator))
	}
	return fmt.Errorf("invalid configuration: %v", messages)
}
