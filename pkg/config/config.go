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
	Session      SessionConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Seed         SeedConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"PARKING_APP_ENV" required:"true"`
	Port         string `envconfig:"PARKING_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PARKING_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"PARKING_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"PARKING_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PARKING_DB_DSN"`
	Driver string `envconfig:"PARKING_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARKING_DB_HOST"`
	LegacyPort     int    `envconfig:"PARKING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARKING_DB_USER"`
	LegacyPassword string `envconfig:"PARKING_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARKING_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARKING_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARKING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARKING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARKING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARKING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected (local development only).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PARKING_REDIS_URL"`
	Address      string        `envconfig:"PARKING_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"PARKING_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARKING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARKING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARKING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARKING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARKING_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PARKING_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PARKING_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PARKING_JWT_ISSUER" default:"parking-lots"`
	ExpirationMinutes int    `envconfig:"PARKING_JWT_EXPIRATION_MINUTES" default:"480"`
}

// TTL returns the access token lifetime; it also bounds the server-side session.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SessionConfig struct {
	CookieName   string        `envconfig:"PARKING_SESSION_COOKIE_NAME" default:"parking_session"`
	CookieSecure bool          `envconfig:"PARKING_SESSION_COOKIE_SECURE" default:"false"`
	FlashCookie  string        `envconfig:"PARKING_FLASH_COOKIE_NAME" default:"parking_flash"`
	FlashTTL     time.Duration `envconfig:"PARKING_FLASH_TTL" default:"5m"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PARKING_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PARKING_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PARKING_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PARKING_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PARKING_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PARKING_AUTO_MIGRATE" default:"false"`
}

// SeedConfig holds the bootstrap accounts created on first run.
type SeedConfig struct {
	Enabled            bool   `envconfig:"PARKING_SEED_ENABLED" default:"true"`
	SampleLots         bool   `envconfig:"PARKING_SEED_SAMPLE_LOTS" default:"true"`
	LotManagerUsername string `envconfig:"PARKING_SEED_LOT_MANAGER_USERNAME" default:"lotm"`
	LotManagerPassword string `envconfig:"PARKING_SEED_LOT_MANAGER_PASSWORD" default:"lotm123"`
	LotManagerEmail    string `envconfig:"PARKING_SEED_LOT_MANAGER_EMAIL" default:"lotmanager@parking.com"`
	AdminUsername      string `envconfig:"PARKING_SEED_ADMIN_USERNAME" default:"admin"`
	AdminPassword      string `envconfig:"PARKING_SEED_ADMIN_PASSWORD" default:"admin123"`
	AdminEmail         string `envconfig:"PARKING_SEED_ADMIN_EMAIL" default:"admin@parking.com"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PARKING_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverSQLite)
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
