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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Nuvemshop     NuvemshopConfig
	Orders        OrdersConfig
	Refresh       RefreshConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Refresh.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERDESK_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"ORDERDESK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ORDERDESK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ORDERDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERDESK_DB_DSN"`
	Driver string `envconfig:"ORDERDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERDESK_DB_USER"`
	LegacyPassword string `envconfig:"ORDERDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERDESK_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"ORDERDESK_SQLITE_PATH" default:"orderdesk.db"`

	MaxOpenConns    int           `envconfig:"ORDERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"ORDERDESK_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ORDERDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ORDERDESK_JWT_ISSUER" default:"orderdesk"`
	ExpirationMinutes      int    `envconfig:"ORDERDESK_JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"ORDERDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ORDERDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ORDERDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ORDERDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ORDERDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ORDERDESK_ARGON_KEY_LEN" default:"32"`
}

// AuthRateLimitConfig throttles login attempts and operator-triggered refreshes.
// A zero window or limit disables the rule.
type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"ORDERDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"ORDERDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"ORDERDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RefreshWindow    time.Duration `envconfig:"ORDERDESK_RATE_LIMIT_REFRESH_WINDOW" default:"1m"`
	RefreshUserLimit int           `envconfig:"ORDERDESK_RATE_LIMIT_REFRESH_USER_LIMIT" default:"6"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ORDERDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ORDERDESK_AUTO_MIGRATE" default:"false"`
}

type NuvemshopConfig struct {
	StoreID   string        `envconfig:"ORDERDESK_NUVEMSHOP_STORE_ID" required:"true"`
	Token     string        `envconfig:"ORDERDESK_NUVEMSHOP_TOKEN" required:"true"`
	BaseURL   string        `envconfig:"ORDERDESK_NUVEMSHOP_BASE_URL" default:"https://api.nuvemshop.com.br/v1"`
	UserAgent string        `envconfig:"ORDERDESK_NUVEMSHOP_USER_AGENT" default:"orderdesk (ops@orderdesk.local)"`
	Timeout   time.Duration `envconfig:"ORDERDESK_NUVEMSHOP_TIMEOUT" default:"20s"`
}

type OrdersConfig struct {
	CacheTTL              time.Duration `envconfig:"ORDERDESK_ORDERS_CACHE_TTL" default:"15m"`
	EmptyResultTTL        time.Duration `envconfig:"ORDERDESK_ORDERS_EMPTY_RESULT_TTL" default:"5m"`
	AnnotationConcurrency int           `envconfig:"ORDERDESK_ORDERS_ANNOTATION_CONCURRENCY" default:"10"`
	DefaultPerPage        int           `envconfig:"ORDERDESK_ORDERS_DEFAULT_PER_PAGE" default:"25"`
	Timezone              string        `envconfig:"ORDERDESK_ORDERS_TIMEZONE" default:"America/Sao_Paulo"`
}

// Location resolves the configured timezone, falling back to the process local zone.
func (o OrdersConfig) Location() *time.Location {
	name := strings.TrimSpace(o.Timezone)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

type RefreshConfig struct {
	IntervalMinutes int           `envconfig:"ORDERDESK_REFRESH_INTERVAL_MINUTES" default:"15"`
	PageSize        int           `envconfig:"ORDERDESK_REFRESH_PAGE_SIZE" default:"50"`
	Enabled         bool          `envconfig:"ORDERDESK_REFRESH_ENABLED" default:"true"`
	LockTTL         time.Duration `envconfig:"ORDERDESK_REFRESH_LOCK_TTL" default:"2m"`
}

// Interval returns the tick interval as a duration.
func (r RefreshConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMinutes) * time.Minute
}

func (r RefreshConfig) validate() error {
	if r.IntervalMinutes < MinRefreshIntervalMinutes || r.IntervalMinutes > MaxRefreshIntervalMinutes {
		return fmt.Errorf("%s must be between %d and %d minutes", EnvRefreshInterval, MinRefreshIntervalMinutes, MaxRefreshIntervalMinutes)
	}
	if r.PageSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvRefreshPageSize)
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ORDERDESK_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = db.SQLitePath
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
