package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Vault        VaultConfig
	Spin         SpinConfig
	Cart         CartConfig
	Shipping     ShippingConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SPINMART_APP_ENV" required:"true"`
	Port         string `envconfig:"SPINMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPINMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPINMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SPINMART_DB_DSN"`
	Driver string `envconfig:"SPINMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPINMART_DB_HOST"`
	LegacyPort     int    `envconfig:"SPINMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPINMART_DB_USER"`
	LegacyPassword string `envconfig:"SPINMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPINMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPINMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPINMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPINMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPINMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPINMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPINMART_REDIS_URL"`
	Address      string        `envconfig:"SPINMART_REDIS_ADDR"`
	Password     string        `envconfig:"SPINMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPINMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPINMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPINMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPINMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPINMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPINMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPINMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPINMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SPINMART_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// VaultConfig drives the sealed key/value codec used for promo state.
type VaultConfig struct {
	Secret           string `envconfig:"SPINMART_VAULT_SECRET" required:"true"`
	ArgonMemoryKB    int    `envconfig:"SPINMART_VAULT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"SPINMART_VAULT_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"SPINMART_VAULT_ARGON_PARALLELISM" default:"2"`
}

type SpinConfig struct {
	TotalAttempts int           `envconfig:"SPINMART_SPIN_TOTAL_ATTEMPTS" default:"3"`
	RevealDelay   time.Duration `envconfig:"SPINMART_SPIN_REVEAL_DELAY" default:"4s"`
	StateTTL      time.Duration `envconfig:"SPINMART_SPIN_STATE_TTL" default:"720h"`
}

type CartConfig struct {
	StateTTL time.Duration `envconfig:"SPINMART_CART_STATE_TTL" default:"168h"`
}

type ShippingConfig struct {
	DefaultChargeCents int `envconfig:"SPINMART_SHIPPING_DEFAULT_CHARGE_CENTS" default:"12000"`
	InsideDhakaCents   int `envconfig:"SPINMART_SHIPPING_INSIDE_DHAKA_CENTS" default:"6000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SPINMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SPINMART_AUTO_MIGRATE" default:"false"`
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
