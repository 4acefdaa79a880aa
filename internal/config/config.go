package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Google   GoogleConfig   `env:",prefix=GOOGLE_"`
	Cookie   CookieConfig   `env:",prefix=COOKIE_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`

	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type PostgresConfig struct {
	Host          string `env:"HOST,default=localhost"`
	Port          string `env:"PORT,default=5432"`
	User          string `env:"USER,default=chat_auth"`
	Password      string `env:"PASSWORD,default=chat_auth_password"`
	DBName        string `env:"DB,default=chat_auth_db"`
	SSLMode       string `env:"SSLMODE,default=disable"`
	RunMigrations bool   `env:"RUN_MIGRATIONS,default=true"`
}

type RedisConfig struct {
	Host         string   `env:"HOST,default=localhost"`
	Port         string   `env:"PORT,default=6379"`
	Password     string   `env:"PASSWORD,default="`
	DB           int      `env:"DB,default=0"`
	UserCacheTTL Duration `env:"USER_CACHE_TTL,default=10m"`
}

type JWTConfig struct {
	Secret            string   `env:"SECRET,required"`
	AccessTokenExpiry Duration `env:"ACCESS_TOKEN_EXPIRY,default=1h"`
}

// GoogleConfig holds the OAuth client registration used for the
// authorization-code exchange.
type GoogleConfig struct {
	ClientID     string   `env:"CLIENT_ID,required"`
	ClientSecret string   `env:"CLIENT_SECRET,required"`
	RedirectURI  string   `env:"REDIRECT_URI,default=http://localhost:3000"`
	TokenURL     string   `env:"TOKEN_URL,default=https://oauth2.googleapis.com/token"`
	UserInfoURL  string   `env:"USER_INFO_URL,default=https://www.googleapis.com/oauth2/v2/userinfo"`
	HTTPTimeout  Duration `env:"HTTP_TIMEOUT,default=10s"`
}

type CookieConfig struct {
	Domain string `env:"DOMAIN,default="`
	Path   string `env:"PATH,default=/"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=10"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`

	// How often expired refresh tokens are purged from Postgres.
	TokenCleanupInterval Duration `env:"TOKEN_CLEANUP_INTERVAL,default=1h"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if config.Google.ClientID == "" || config.Google.ClientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	if config.Google.HTTPTimeout.Duration <= 0 {
		return nil, fmt.Errorf("GOOGLE_HTTP_TIMEOUT must be positive")
	}

	if config.Security.TokenCleanupInterval.Duration <= 0 {
		return nil, fmt.Errorf("TOKEN_CLEANUP_INTERVAL must be positive")
	}

	return &config, nil
}
