package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LOGISTICA_SERVER_ADDRESS.
const EnvPrefix = "LOGISTICA"

// Config holds all application configuration
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	Storage     StorageConfig `mapstructure:"storage"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Session     SessionConfig `mapstructure:"session"`
	Rua08       GridConfig    `mapstructure:"rua08"`
	Admin       AdminConfig   `mapstructure:"admin"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	UploadMaxBytes  int64         `mapstructure:"upload_max_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig locates the JSON collections and the sqlite database.
// An empty MigrationsDir applies the embedded migrations.
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// GridConfig sizes the Rua 08 storage grid.
type GridConfig struct {
	Buildings int `mapstructure:"buildings"`
	Levels    int `mapstructure:"levels"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load reads configuration from an optional config file, then environment
// variables, on top of defaults. file may be empty; when set it must exist.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.DataDir, "logistica.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.data_dir is required")
	}
	if c.Rua08.Buildings <= 0 || c.Rua08.Levels <= 0 {
		return fmt.Errorf("rua08 grid must be positive, got %dx%d", c.Rua08.Buildings, c.Rua08.Levels)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.Server.UploadMaxBytes <= 0 {
		return errors.New("server.upload_max_bytes must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.upload_max_bytes", 10<<20)
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("storage.migrations_dir", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.purge_interval", "1h")

	v.SetDefault("rua08.buildings", 12)
	v.SetDefault("rua08.levels", 5)

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")
}
