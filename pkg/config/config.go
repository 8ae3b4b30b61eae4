package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Settings      SettingsConfig
	Reconcile     ReconcileConfig
	Seed          SeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREADMIN_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREADMIN_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"STOREADMIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREADMIN_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"STOREADMIN_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type ServiceConfig struct {
	Kind string `envconfig:"STOREADMIN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREADMIN_DB_DSN"`
	Driver string `envconfig:"STOREADMIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREADMIN_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREADMIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREADMIN_DB_USER"`
	LegacyPassword string `envconfig:"STOREADMIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREADMIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREADMIN_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"STOREADMIN_SQLITE_PATH" default:"storeadmin.db"`

	MaxOpenConns    int           `envconfig:"STOREADMIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREADMIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREADMIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREADMIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery is the duration above which statements are logged as warnings.
	SlowQuery time.Duration `envconfig:"STOREADMIN_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREADMIN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREADMIN_REDIS_ADDR"`
	Password     string        `envconfig:"STOREADMIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREADMIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREADMIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREADMIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREADMIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREADMIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREADMIN_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyNamespace string        `envconfig:"STOREADMIN_REDIS_KEY_NAMESPACE" default:"sa"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOREADMIN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOREADMIN_JWT_ISSUER" default:"storeadmin"`
	ExpirationMinutes      int    `envconfig:"STOREADMIN_JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"STOREADMIN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREADMIN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREADMIN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREADMIN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREADMIN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREADMIN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STOREADMIN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"STOREADMIN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"STOREADMIN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREADMIN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREADMIN_AUTO_MIGRATE" default:"false"`
}

type SettingsConfig struct {
	CacheTTL time.Duration `envconfig:"STOREADMIN_SETTINGS_CACHE_TTL" default:"60s"`
}

type ReconcileConfig struct {
	Interval time.Duration `envconfig:"STOREADMIN_RECONCILE_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"STOREADMIN_RECONCILE_LOCK_TTL" default:"10m"`
}

type SeedConfig struct {
	AdminName     string `envconfig:"STOREADMIN_SEED_ADMIN_NAME" default:"Administrator"`
	AdminEmail    string `envconfig:"STOREADMIN_SEED_ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"STOREADMIN_SEED_ADMIN_PASSWORD"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
