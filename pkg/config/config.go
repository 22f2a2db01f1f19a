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
	Catalog      CatalogConfig
	Scan         ScanConfig
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
	Env          string `envconfig:"SHELFWISE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHELFWISE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHELFWISE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHELFWISE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHELFWISE_DB_DSN"`
	Driver string `envconfig:"SHELFWISE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHELFWISE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHELFWISE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHELFWISE_DB_USER"`
	LegacyPassword string `envconfig:"SHELFWISE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHELFWISE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHELFWISE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHELFWISE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHELFWISE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHELFWISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHELFWISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHELFWISE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHELFWISE_REDIS_ADDR"`
	Password     string        `envconfig:"SHELFWISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHELFWISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHELFWISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHELFWISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHELFWISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHELFWISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHELFWISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"SHELFWISE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"SHELFWISE_JWT_ISSUER" required:"true"`
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"SHELFWISE_CATALOG_BASE_URL" default:"https://world.openfoodfacts.org/api/v0/product"`
	Timeout time.Duration `envconfig:"SHELFWISE_CATALOG_TIMEOUT" default:"8s"`
}

type ScanConfig struct {
	DeviceCacheTTL time.Duration `envconfig:"SHELFWISE_SCAN_DEVICE_CACHE_TTL" default:"5m"`
	FanoutTimeout  time.Duration `envconfig:"SHELFWISE_SCAN_FANOUT_TIMEOUT" default:"10s"`
	MaxProductTags int           `envconfig:"SHELFWISE_SCAN_MAX_PRODUCT_TAGS" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHELFWISE_AUTO_MIGRATE" default:"false"`
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
