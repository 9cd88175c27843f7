package config

const EnvPrefix = "PARKING"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv    = "PARKING_APP_ENV"
	EnvPort      = "PARKING_APP_PORT"
	EnvLogLevel  = "PARKING_LOG_LEVEL"
	EnvLogFormat = "PARKING_LOG_FORMAT"
	EnvDBDSN     = "PARKING_DB_DSN"
	EnvDBDriver  = "PARKING_DB_DRIVER"
	EnvDBHost    = "PARKING_DB_HOST"
	EnvDBPort    = "PARKING_DB_PORT"
	EnvDBUser    = "PARKING_DB_USER"
	EnvDBName    = "PARKING_DB_NAME"
	EnvDBPass    = "PARKING_DB_PASSWORD"
	EnvRedisURL  = "PARKING_REDIS_URL"
	EnvJWTSecret = "PARKING_JWT_SECRET"
	EnvJWTIssuer = "PARKING_JWT_ISSUER"
	EnvJWTExpMin = "PARKING_JWT_EXPIRATION_MINUTES"
	EnvSeedAdmin = "PARKING_SEED_ADMIN_USERNAME"
	EnvCORS      = "PARKING_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
