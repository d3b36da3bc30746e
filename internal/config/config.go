package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-only-secret-change-me-please-0000"

type Config struct {
	Env  string
	Port int

	DBURL         string
	DBMaxConns    int32
	DBInitRetries uint64
	DBInitBackoff time.Duration

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
	AdminEmpID     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRateLimit  int
	LoginRateWindow time.Duration

	CORSOrigins    []string
	TrustedProxies []string

	OTelEndpoint    string
	OTelServiceName string
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_INIT_ATTEMPTS", 10)
	v.SetDefault("DB_INIT_BACKOFF", 3*time.Second)
	v.SetDefault("JWT_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ADMIN_EMAIL", "admin@portal.com")
	v.SetDefault("ADMIN_PASSWORD", "adminpassword")
	v.SetDefault("ADMIN_FIRST_NAME", "Admin")
	v.SetDefault("ADMIN_LAST_NAME", "User")
	v.SetDefault("ADMIN_EMP_ID", "0001")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)
	v.SetDefault("OTEL_SERVICE_NAME", "employee-portal")

	// the development secret is only handed out when the environment says so
	env := v.GetString("APP_ENV")
	explicitEnv := env != ""
	if !explicitEnv {
		env = "dev"
	}

	secret := v.GetString("JWT_SECRET")
	if secret == "" && explicitEnv && (env == "dev" || env == "test") {
		secret = devJWTSecret
	}

	dbURL := v.GetString("DB_URL")
	if dbURL == "" {
		dbURL = buildDBURL(v)
	}

	// attempts counts the first try, the retry budget does not
	attempts := v.GetUint64("DB_INIT_ATTEMPTS")
	var retries uint64
	if attempts > 0 {
		retries = attempts - 1
	}

	return Config{
		Env:             env,
		Port:            v.GetInt("PORT"),
		DBURL:           dbURL,
		DBMaxConns:      v.GetInt32("DB_MAX_CONNS"),
		DBInitRetries:   retries,
		DBInitBackoff:   v.GetDuration("DB_INIT_BACKOFF"),
		JWTSecret:       secret,
		JWTTTL:          v.GetDuration("JWT_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		AdminFirstName:  v.GetString("ADMIN_FIRST_NAME"),
		AdminLastName:   v.GetString("ADMIN_LAST_NAME"),
		AdminEmpID:      v.GetString("ADMIN_EMP_ID"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		TrustedProxies:  splitList(v.GetString("TRUSTED_PROXIES")),
		OTelEndpoint:    v.GetString("OTEL_ENDPOINT"),
		OTelServiceName: v.GetString("OTEL_SERVICE_NAME"),
	}
}

func buildDBURL(v *viper.Viper) string {
	get := func(key, fallback string) string {
		if s := v.GetString(key); s != "" {
			return s
		}
		return fallback
	}

	host := get("DB_HOST", "127.0.0.1")
	port := get("DB_PORT", "5432")
	user := get("DB_USER", "portal")
	pass := get("DB_PASSWORD", "portal")
	name := get("DB_NAME", "portal")
	ssl := get("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.DBURL == "" {
		errs = append(errs, errors.New("DB_URL is required"))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be at least 1"))
	}
	if c.DBInitBackoff <= 0 {
		errs = append(errs, errors.New("DB_INIT_BACKOFF must be positive"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.Env != "dev" && c.Env != "test" && (len(c.JWTSecret) < 32 || c.JWTSecret == devJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters and not the development default"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST out of range: %d", c.BcryptCost))
	}
	if c.LoginRateLimit < 1 || c.LoginRateWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

// WithTimeout bounds a store call; a nil parent falls back to context.Background.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}
