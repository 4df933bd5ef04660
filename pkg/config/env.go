package config

const (
	EnvPrefix = "ORDERDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "ORDERDESK_APP_ENV"
	EnvPort     = "ORDERDESK_APP_PORT"
	EnvLogLevel = "ORDERDESK_LOG_LEVEL"

	EnvDBDSN  = "ORDERDESK_DB_DSN"
	EnvDBHost = "ORDERDESK_DB_HOST"
	EnvDBUser = "ORDERDESK_DB_USER"
	EnvDBName = "ORDERDESK_DB_NAME"

	EnvUseSQLite = "ORDERDESK_USE_SQLITE"
	EnvRedisURL  = "ORDERDESK_REDIS_URL"

	EnvJWTSecret  = "ORDERDESK_JWT_SECRET"
	EnvJWTIssuer  = "ORDERDESK_JWT_ISSUER"
	EnvJWTExpMins = "ORDERDESK_JWT_EXPIRATION_MINUTES"

	EnvNuvemshopStoreID = "ORDERDESK_NUVEMSHOP_STORE_ID"
	EnvNuvemshopToken   = "ORDERDESK_NUVEMSHOP_TOKEN"

	EnvOrdersCacheTTL  = "ORDERDESK_ORDERS_CACHE_TTL"
	EnvOrdersTimezone  = "ORDERDESK_ORDERS_TIMEZONE"
	EnvRefreshInterval = "ORDERDESK_REFRESH_INTERVAL_MINUTES"
	EnvRefreshPageSize = "ORDERDESK_REFRESH_PAGE_SIZE"
	EnvCORSOrigins     = "ORDERDESK_CORS_ALLOWED_ORIGINS"
)

const (
	MinRefreshIntervalMinutes = 5
	MaxRefreshIntervalMinutes = 60
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
