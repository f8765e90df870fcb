package config

// EnvPrefix scopes every environment variable consumed by the platform.
const EnvPrefix = "dukahub"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DUKAHUB_DB_DSN"
	EnvDBHost = "DUKAHUB_DB_HOST"
	EnvDBUser = "DUKAHUB_DB_USER"
	EnvDBName = "DUKAHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
