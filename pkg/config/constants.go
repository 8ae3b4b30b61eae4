package config

const (
	EnvPrefix = "STOREADMIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "STOREADMIN_APP_ENV"
	EnvPort                   = "STOREADMIN_APP_PORT"
	EnvDBDSN                  = "STOREADMIN_DB_DSN"
	EnvDBHost                 = "STOREADMIN_DB_HOST"
	EnvDBPort                 = "STOREADMIN_DB_PORT"
	EnvDBUser                 = "STOREADMIN_DB_USER"
	EnvDBPassword             = "STOREADMIN_DB_PASSWORD"
	EnvDBName                 = "STOREADMIN_DB_NAME"
	EnvUseSQLite              = "STOREADMIN_USE_SQLITE"
	EnvRedisURL               = "STOREADMIN_REDIS_URL"
	EnvJWTSecret              = "STOREADMIN_JWT_SECRET"
	EnvJWTIssuer              = "STOREADMIN_JWT_ISSUER"
	EnvJWTExpMins             = "STOREADMIN_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STOREADMIN_REFRESH_TOKEN_TTL_MINUTES"
	EnvSettingsCacheTTL       = "STOREADMIN_SETTINGS_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
