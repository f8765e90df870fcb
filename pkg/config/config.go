package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DUKAHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"DUKAHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DUKAHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DUKAHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DUKAHUB_DB_DSN"`
	Driver string `envconfig:"DUKAHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DUKAHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"DUKAHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DUKAHUB_DB_USER"`
	LegacyPassword string `envconfig:"DUKAHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"DUKAHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"DUKAHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DUKAHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DUKAHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DUKAHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DUKAHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DUKAHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DUKAHUB_REDIS_ADDR"`
	Password     string        `envconfig:"DUKAHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"DUKAHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DUKAHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DUKAHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DUKAHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DUKAHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DUKAHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DUKAHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DUKAHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DUKAHUB_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DUKAHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DUKAHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DUKAHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DUKAHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DUKAHUB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DUKAHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DUKAHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DUKAHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DUKAHUB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DUKAHUB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DUKAHUB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DUKAHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DUKAHUB_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig carries the flat-rate shipping rule applied at checkout.
type CheckoutConfig struct {
	ShippingFee           string `envconfig:"DUKAHUB_CHECKOUT_SHIPPING_FEE" default:"300.00"`
	FreeShippingThreshold string `envconfig:"DUKAHUB_CHECKOUT_FREE_SHIPPING_THRESHOLD" default:"5000.00"`
}

// ShippingFeeAmount parses the configured shipping fee.
func (c CheckoutConfig) ShippingFeeAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(c.ShippingFee)
}

// FreeShippingThresholdAmount parses the configured free-shipping cutoff.
func (c CheckoutConfig) FreeShippingThresholdAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(c.FreeShippingThreshold)
}

type GCPConfig struct {
	ProjectID string `envconfig:"DUKAHUB_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"DUKAHUB_PUBSUB_ORDERS_TOPIC" default:"dukahub-order-events"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"DUKAHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"DUKAHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"DUKAHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsPort    string `envconfig:"DUKAHUB_OUTBOX_METRICS_PORT" default:"9091"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
