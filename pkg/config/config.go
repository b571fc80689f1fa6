package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Dataset      DatasetConfig
	DB           DBConfig
	Redis        RedisConfig
	Reports      ReportsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPMETRICS_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPMETRICS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPMETRICS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPMETRICS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DatasetConfig locates the raw CSV row sets and the rendered output.
type DatasetConfig struct {
	Dir          string `envconfig:"SHOPMETRICS_DATASET_DIR" default:"data/synthetic"`
	InsightsPath string `envconfig:"SHOPMETRICS_INSIGHTS_PATH" default:"results/insights.txt"`
}

type DBConfig struct {
	Driver string `envconfig:"SHOPMETRICS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"SHOPMETRICS_DB_DSN" default:"database/ecommerce.db"`

	MaxOpenConns    int           `envconfig:"SHOPMETRICS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SHOPMETRICS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPMETRICS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPMETRICS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q (expected %s or %s)", db.Driver, DBDriverSQLite, DBDriverPostgres)
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	return nil
}

// RedisConfig is optional; when URL is empty the report cache is disabled.
type RedisConfig struct {
	URL          string        `envconfig:"SHOPMETRICS_REDIS_URL"`
	PoolSize     int           `envconfig:"SHOPMETRICS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPMETRICS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPMETRICS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPMETRICS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPMETRICS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type ReportsConfig struct {
	TopCustomers int           `envconfig:"SHOPMETRICS_REPORTS_TOP_CUSTOMERS" default:"20"`
	CacheTTL     time.Duration `envconfig:"SHOPMETRICS_REPORTS_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate      bool `envconfig:"SHOPMETRICS_AUTO_MIGRATE" default:"false"`
	PersistWarehouse bool `envconfig:"SHOPMETRICS_PERSIST_WAREHOUSE" default:"false"`
}
