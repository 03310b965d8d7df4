package config

const (
	EnvPrefix = "SPINMART"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv      = "SPINMART_APP_ENV"
	EnvPort        = "SPINMART_APP_PORT"
	EnvDBDSN       = "SPINMART_DB_DSN"
	EnvDBHost      = "SPINMART_DB_HOST"
	EnvDBUser      = "SPINMART_DB_USER"
	EnvDBName      = "SPINMART_DB_NAME"
	EnvRedisURL    = "SPINMART_REDIS_URL"
	EnvJWTSecret   = "SPINMART_JWT_SECRET"
	EnvJWTIssuer   = "SPINMART_JWT_ISSUER"
	EnvVaultSecret = "SPINMART_VAULT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
