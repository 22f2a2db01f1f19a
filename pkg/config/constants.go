package config

// EnvPrefix namespaces every environment variable the API reads.
const EnvPrefix = "SHELFWISE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv    = "SHELFWISE_APP_ENV"
	EnvPort      = "SHELFWISE_APP_PORT"
	EnvDBDSN     = "SHELFWISE_DB_DSN"
	EnvDBHost    = "SHELFWISE_DB_HOST"
	EnvDBUser    = "SHELFWISE_DB_USER"
	EnvDBName    = "SHELFWISE_DB_NAME"
	EnvRedisURL  = "SHELFWISE_REDIS_URL"
	EnvJWTSecret = "SHELFWISE_JWT_SECRET"
	EnvJWTIssuer = "SHELFWISE_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
