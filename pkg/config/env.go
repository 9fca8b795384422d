package config

const EnvPrefix = "SHIPTRACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "SHIPTRACK_APP_ENV"
	EnvPort                   = "SHIPTRACK_APP_PORT"
	EnvLogLevel               = "SHIPTRACK_LOG_LEVEL"
	EnvDBDSN                  = "SHIPTRACK_DB_DSN"
	EnvDBHost                 = "SHIPTRACK_DB_HOST"
	EnvDBPort                 = "SHIPTRACK_DB_PORT"
	EnvDBUser                 = "SHIPTRACK_DB_USER"
	EnvDBPassword             = "SHIPTRACK_DB_PASSWORD"
	EnvDBName                 = "SHIPTRACK_DB_NAME"
	EnvRedisURL               = "SHIPTRACK_REDIS_URL"
	EnvJWTSecret              = "SHIPTRACK_JWT_SECRET"
	EnvJWTIssuer              = "SHIPTRACK_JWT_ISSUER"
	EnvJWTExpMins             = "SHIPTRACK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHIPTRACK_REFRESH_TOKEN_TTL_MINUTES"
	EnvCORSAllowedOrigins     = "SHIPTRACK_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
