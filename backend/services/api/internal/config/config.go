package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	libconfig "github.com/AttriPardeep/VoltStartEV-Backend/backend/libs/config"
)

// Environments recognised by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// DevJWTSecret is only ever used when APP_ENV=development and JWT_SECRET is unset.
const DevJWTSecret = "dev_secret_change_in_production"

// Supported SteVe database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config defines API configuration.
type Config struct {
	Env       string          `yaml:"env" env:"APP_ENV"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Log       LogConfig       `yaml:"log"`
	OTP       OTPConfig       `yaml:"otp"`
	Tariff    TariffConfig    `yaml:"tariff"`

	// UsingDevSecret is set when the development fallback secret was applied.
	UsingDevSecret bool `yaml:"-" env:"-"`
}

// HTTPConfig controls the listener.
type HTTPConfig struct {
	Port           string `yaml:"port" env:"PORT"`
	BodyLimitBytes int64  `yaml:"bodyLimitBytes" env:"BODY_LIMIT_BYTES"`
}

// DatabaseConfig points at the SteVe database. DSN wins over the discrete fields.
type DatabaseConfig struct {
	Driver         string `yaml:"driver" env:"STEVE_DB_DRIVER"`
	DSN            string `yaml:"dsn" env:"STEVE_DB_DSN"`
	Host           string `yaml:"host" env:"STEVE_DB_HOST"`
	Port           int    `yaml:"port" env:"STEVE_DB_PORT"`
	Name           string `yaml:"name" env:"STEVE_DB_NAME"`
	User           string `yaml:"user" env:"STEVE_DB_USER"`
	Password       string `yaml:"password" env:"STEVE_DB_PASS"`
	SSLMode        string `yaml:"sslMode" env:"STEVE_DB_SSLMODE"`
	MaxOpenConns   int    `yaml:"maxOpenConns" env:"DB_MAX_OPEN_CONNS"`
	QueryTimeoutMS int    `yaml:"queryTimeoutMs" env:"DB_QUERY_TIMEOUT_MS"`
	RunMigrations  bool   `yaml:"runMigrations" env:"RUN_MIGRATIONS"`
}

// RedisConfig is optional; without an address OTPs live in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// JWTConfig controls bearer token signing.
type JWTConfig struct {
	Secret         string `yaml:"secret" env:"JWT_SECRET"`
	ExpiresInHours int    `yaml:"expiresInHours" env:"JWT_EXPIRES_HOURS"`
}

// CORSConfig lists allowed browser origins. "*" allows any origin without credentials.
type CORSConfig struct {
	Origins []string `yaml:"origins" env:"CORS_ORIGIN"`
}

// RateLimitConfig mirrors the fixed-window settings clients already know.
type RateLimitConfig struct {
	WindowMS    int `yaml:"windowMs" env:"RATE_LIMIT_WINDOW_MS"`
	MaxRequests int `yaml:"maxRequests" env:"RATE_LIMIT_MAX_REQUESTS"`
}

// LogConfig controls zap output.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

// OTPConfig controls one-time code issuance.
type OTPConfig struct {
	TTLSeconds  int    `yaml:"ttlSeconds" env:"OTP_TTL_SECONDS"`
	Length      int    `yaml:"length" env:"OTP_LENGTH"`
	MaxAttempts int    `yaml:"maxAttempts" env:"OTP_MAX_ATTEMPTS"`
	DevCode     string `yaml:"devCode" env:"OTP_DEV_CODE"`
}

// TariffConfig holds the flat price applied to delivered energy.
type TariffConfig struct {
	RatePerUnit float64 `yaml:"ratePerUnit" env:"RATE_PER_UNIT"`
	Currency    string  `yaml:"currency" env:"CURRENCY"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		Env: EnvProduction,
		HTTP: HTTPConfig{
			Port:           "3000",
			BodyLimitBytes: 10 << 20,
		},
		Database: DatabaseConfig{
			Driver:         DriverMySQL,
			SSLMode:        "disable",
			MaxOpenConns:   20,
			QueryTimeoutMS: 5000,
		},
		JWT: JWTConfig{
			ExpiresInHours: 7 * 24,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			WindowMS:    900000,
			MaxRequests: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
		OTP: OTPConfig{
			TTLSeconds:  300,
			Length:      4,
			MaxAttempts: 5,
			DevCode:     "1234",
		},
		Tariff: TariffConfig{
			RatePerUnit: 12.0,
			Currency:    "INR",
		},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	case "":
		c.Env = EnvProduction
	default:
		return fmt.Errorf("config: unknown APP_ENV %q", c.Env)
	}

	if strings.TrimSpace(c.JWT.Secret) == "" {
		if !c.IsDevelopment() {
			return errors.New("config: jwt secret required")
		}
		c.JWT.Secret = DevJWTSecret
		c.UsingDevSecret = true
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	case "":
		c.Database.Driver = DriverMySQL
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Port <= 0 {
		c.Database.Port = defaultDBPort(c.Database.Driver)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		if strings.TrimSpace(c.Database.Host) == "" || strings.TrimSpace(c.Database.Name) == "" {
			return errors.New("config: database dsn or host/name required")
		}
	}

	if c.OTP.Length < 4 || c.OTP.Length > 8 {
		return fmt.Errorf("config: otp length must be between 4 and 8, got %d", c.OTP.Length)
	}
	if c.OTP.MaxAttempts < 1 {
		return fmt.Errorf("config: otp max attempts must be positive, got %d", c.OTP.MaxAttempts)
	}
	if c.Tariff.RatePerUnit < 0 {
		return errors.New("config: rate per unit must not be negative")
	}
	return nil
}

// IsDevelopment reports whether APP_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction reports whether APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "3000"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// DatabaseDSN returns the configured DSN or builds one for the driver from discrete fields.
func (c *Config) DatabaseDSN() string {
	if dsn := strings.TrimSpace(c.Database.DSN); dsn != "" {
		return dsn
	}
	port := c.Database.Port
	if port <= 0 {
		port = defaultDBPort(c.Database.Driver)
	}
	addr := net.JoinHostPort(c.Database.Host, strconv.Itoa(port))

	if c.Database.Driver != DriverPostgres {
		my := mysql.NewConfig()
		my.Net = "tcp"
		my.Addr = addr
		my.DBName = c.Database.Name
		my.User = c.Database.User
		my.Passwd = c.Database.Password
		my.ParseTime = true
		my.TLSConfig = mysqlTLS(c.Database.SSLMode)
		return my.FormatDSN()
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   addr,
		Path:   "/" + c.Database.Name,
	}
	if c.Database.User != "" {
		if c.Database.Password != "" {
			u.User = url.UserPassword(c.Database.User, c.Database.Password)
		} else {
			u.User = url.User(c.Database.User)
		}
	}
	q := url.Values{}
	if c.Database.SSLMode != "" {
		q.Set("sslmode", c.Database.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func defaultDBPort(driver string) int {
	if driver == DriverPostgres {
		return 5432
	}
	return 3306
}

// mysqlTLS maps libpq sslmode values onto the mysql driver's tls parameter.
func mysqlTLS(sslMode string) string {
	switch strings.ToLower(strings.TrimSpace(sslMode)) {
	case "require":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return "true"
	case "prefer", "allow":
		return "preferred"
	default:
		return ""
	}
}

// QueryTimeout bounds every database round trip.
func (c *Config) QueryTimeout() time.Duration {
	if c.Database.QueryTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Database.QueryTimeoutMS) * time.Millisecond
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.JWT.ExpiresInHours) * time.Hour
}

// RateLimitWindow returns the limiter window.
func (c *Config) RateLimitWindow() time.Duration {
	if c.RateLimit.WindowMS <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.RateLimit.WindowMS) * time.Millisecond
}

// OTPTTL returns the OTP lifetime.
func (c *Config) OTPTTL() time.Duration {
	if c.OTP.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.OTP.TTLSeconds) * time.Second
}
