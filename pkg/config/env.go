package config

// EnvPrefix scopes every variable envconfig reads.
const EnvPrefix = "SHOPMETRICS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv       = "SHOPMETRICS_APP_ENV"
	EnvAppPort      = "SHOPMETRICS_APP_PORT"
	EnvLogLevel     = "SHOPMETRICS_LOG_LEVEL"
	EnvDatasetDir   = "SHOPMETRICS_DATASET_DIR"
	EnvInsightsPath = "SHOPMETRICS_INSIGHTS_PATH"
	EnvDBDriver     = "SHOPMETRICS_DB_DRIVER"
	EnvDBDSN        = "SHOPMETRICS_DB_DSN"
	EnvRedisURL     = "SHOPMETRICS_REDIS_URL"
)
