package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names accepted in configuration.
const (
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Import  ImportConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

// StorageConfig selects the question store backend once at startup.
type StorageConfig struct {
	Backend  string
	SQLite   SQLiteConfig
	BigQuery BigQueryConfig
}

type SQLiteConfig struct {
	Path          string `yaml:"path"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type BigQueryConfig struct {
	ProjectID       string `yaml:"project_id"`
	Dataset         string `yaml:"dataset"`
	Table           string `yaml:"table"`
	CredentialsFile string `yaml:"credentials_file"`
}

type ImportConfig struct {
	DefaultPath string `yaml:"default_path"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("storage.backend", BackendSQLite)
	viper.SetDefault("storage.sqlite.path", "promptquest.db")
	viper.SetDefault("storage.sqlite.migrations_dir", "database/migrations")
	viper.SetDefault("storage.bigquery.dataset", "promptquest_db")
	viper.SetDefault("storage.bigquery.table", "questions")
	viper.SetDefault("import.default_path", "input/promptquest-questions.json")

	viper.AutomaticEnv()

	// A missing config file is fine; defaults plus env cover every key.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Storage: StorageConfig{
			Backend: viper.GetString("storage.backend"),
			SQLite: SQLiteConfig{
				Path:          viper.GetString("storage.sqlite.path"),
				MigrationsDir: viper.GetString("storage.sqlite.migrations_dir"),
			},
			BigQuery: BigQueryConfig{
				ProjectID:       viper.GetString("storage.bigquery.project_id"),
				Dataset:         viper.GetString("storage.bigquery.dataset"),
				Table:           viper.GetString("storage.bigquery.table"),
				CredentialsFile: viper.GetString("storage.bigquery.credentials_file"),
			},
		},
		Import: ImportConfig{
			DefaultPath: viper.GetString("import.default_path"),
		},
	}

	// Environment overrides for deployment targets without a config file.
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}
	if project := os.Getenv("GCP_PROJECT_ID"); project != "" {
		config.Storage.BigQuery.ProjectID = project
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for the sqlite backend")
		}
	case BackendBigQuery:
		if c.Storage.BigQuery.ProjectID == "" {
			return fmt.Errorf("storage.bigquery.project_id is required for the bigquery backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	return nil
}
