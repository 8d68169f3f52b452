package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	Storage    string `yaml:"storage" env:"STORAGE" env-default:"postgres"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Redis      `yaml:"redis"`
	Clickify   `yaml:"clickify"`
	Cookie     `yaml:"cookie"`
}

// HTTPServer holds HTTP listener configuration.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-default:"http://localhost:3000,http://127.0.0.1:3000"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host            string     `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int        `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string     `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string     `yaml:"password" env:"DB_PASSWORD"`
	DBName          string     `yaml:"dbname" env:"DB_NAME" env-default:"clickify"`
	SSLMode         string     `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string     `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int        `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int        `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime string     `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool       `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	SeedData        bool       `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"false"`
	SeedLinks       []SeedLink `yaml:"seed_links"`
}

// SeedLink describes a tracked link created by database seeding.
type SeedLink struct {
	Name      string `yaml:"name"`
	Slug      string `yaml:"slug"`
	TargetURL string `yaml:"target_url"`
}

// Redis holds the connection for the shared rate-limit counters. An empty
// address means counters are kept in process.
type Redis struct {
	Address     string        `yaml:"address" env:"REDIS_ADDR"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
}

// Clickify holds the tracking pipeline settings.
type Clickify struct {
	EnableRateLimit    bool          `yaml:"enable_ratelimit" env:"CLICKIFY_ENABLE_RATELIMIT"`
	RateLimit          string        `yaml:"rate_limit" env:"CLICKIFY_RATE_LIMIT" env-default:"5/m"`
	IPHeaders          []string      `yaml:"ip_headers" env:"CLICKIFY_IP_HEADERS" env-default:"X-Forwarded-For,X-Real-IP,X-Forwarded,X-Cluster-Client-IP,Forwarded-For,Forwarded,REMOTE_ADDR"`
	Geolocation        bool          `yaml:"geolocation" env:"CLICKIFY_GEOLOCATION"`
	GeolocationURL     string        `yaml:"geolocation_url" env:"CLICKIFY_GEOLOCATION_URL" env-default:"http://ip-api.com/json/%s?fields=status,country,city"`
	GeolocationTimeout time.Duration `yaml:"geolocation_timeout" env:"CLICKIFY_GEOLOCATION_TIMEOUT" env-default:"2s"`
	DefaultRedirect    string        `yaml:"default_redirect" env:"CLICKIFY_DEFAULT_REDIRECT" env-default:"/"`
	UserAgentRegexes   string        `yaml:"useragent_regexes" env:"CLICKIFY_USERAGENT_REGEXES"`
}

// Cookie holds the keys for encrypted flash cookies. Secrets is a comma
// separated list for key rotation; each secret needs at least 32 characters.
type Cookie struct {
	Secrets string `yaml:"secrets" env:"COOKIE_SECRETS"`
	Secure  bool   `yaml:"secure" env:"COOKIE_SECURE"`
}

// Default returns the settings that are on unless configured otherwise.
// cleanenv treats an explicit false like a missing value, so boolean
// defaults of true live here instead of in env-default tags.
func Default() Config {
	return Config{
		Database: Database{AutoMigrate: true},
		Clickify: Clickify{
			EnableRateLimit: true,
			Geolocation:     true,
		},
	}
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load reads configPath, or only the environment when the file does not
// exist, on top of Default.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("read %s: %w", configPath, err)
		}
		return &cfg, nil
	}

	log.Println("Config file not found, using environment variables only")
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}
