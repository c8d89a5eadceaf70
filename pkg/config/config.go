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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Billing      BillingConfig
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
	if err := cfg.Billing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAREBILL_APP_ENV" required:"true"`
	Port         string `envconfig:"CAREBILL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAREBILL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAREBILL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CAREBILL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CAREBILL_DB_DSN"`
	Driver string `envconfig:"CAREBILL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAREBILL_DB_HOST"`
	LegacyPort     int    `envconfig:"CAREBILL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAREBILL_DB_USER"`
	LegacyPassword string `envconfig:"CAREBILL_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAREBILL_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAREBILL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAREBILL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAREBILL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAREBILL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAREBILL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAREBILL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAREBILL_REDIS_ADDR"`
	Password     string        `envconfig:"CAREBILL_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAREBILL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAREBILL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAREBILL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAREBILL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAREBILL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAREBILL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CAREBILL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAREBILL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CAREBILL_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// BillingConfig carries the commercial defaults of the engine. Prices are
// integer yen; the tax rate is a percentage.
type BillingConfig struct {
	DefaultTrialDays  int `envconfig:"CAREBILL_BILLING_DEFAULT_TRIAL_DAYS" default:"30"`
	CycleDays         int `envconfig:"CAREBILL_BILLING_CYCLE_DAYS" default:"30"`
	TaxRatePercent    int `envconfig:"CAREBILL_BILLING_TAX_RATE_PERCENT" default:"10"`
	MaxStaffPerDevice int `envconfig:"CAREBILL_BILLING_MAX_STAFF_PER_DEVICE" default:"3"`
}

func (b BillingConfig) validate() error {
	if b.DefaultTrialDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvBillingDefaultTrialDays)
	}
	if b.CycleDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvBillingCycleDays)
	}
	if b.TaxRatePercent < 0 {
		return fmt.Errorf("%s must not be negative", EnvBillingTaxRatePercent)
	}
	if b.MaxStaffPerDevice <= 0 {
		return fmt.Errorf("%s must be positive", EnvBillingMaxStaffPerDevice)
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAREBILL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAREBILL_AUTO_MIGRATE" default:"false"`
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
