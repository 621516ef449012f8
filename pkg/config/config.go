package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Admin     AdminConfig     `yaml:"admin"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type AppConfig struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Environment  string        `yaml:"environment"`
	UploadDir    string        `yaml:"upload_dir"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	CartMaxLines int           `yaml:"cart_max_lines"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type RedisConfig struct {
	RedisHost     string `yaml:"host"`
	RedisPort     string `yaml:"port"`
	RedisPassword string `yaml:"password"`
	RedisDB       int    `yaml:"db"`
}

// KafkaConfig is optional, an empty broker list disables order events.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type RateLimitConfig struct {
	AuthPerSecond float64 `yaml:"auth_per_second"`
	AuthBurst     int     `yaml:"auth_burst"`
}

func defaults() Config {
	return Config{
		App: AppConfig{
			Name:         "agroMarket",
			Version:      "1.0.0",
			Environment:  "development",
			UploadDir:    "static/uploads",
			SessionTTL:   24 * time.Hour,
			CartMaxLines: 50,
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "agro_market",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			RedisHost: "localhost",
			RedisPort: "6379",
		},
		Kafka: KafkaConfig{
			Topic: "order-events",
		},
		RateLimit: RateLimitConfig{
			AuthPerSecond: 1,
			AuthBurst:     5,
		},
	}
}

// Load reads .env, then an optional YAML file named by APP_CONFIG_FILE, then the
// environment. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "mysql" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	return &cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
	cfg.App.Environment = getEnv("APP_ENV", cfg.App.Environment)
	cfg.App.UploadDir = getEnv("UPLOAD_DIR", cfg.App.UploadDir)
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)

	cfg.Database.Driver = strings.ToLower(getEnv("DB_DRIVER", cfg.Database.Driver))
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSL_MODE", cfg.Database.SSLMode)

	cfg.JWT.SecretKey = getEnv("JWT_SECRET", cfg.JWT.SecretKey)

	cfg.Redis.RedisHost = getEnv("REDIS_HOST", cfg.Redis.RedisHost)
	cfg.Redis.RedisPort = getEnv("REDIS_PORT", cfg.Redis.RedisPort)
	cfg.Redis.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Redis.RedisPassword)

	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}

	cfg.Admin.Username = getEnv("ADMIN_USERNAME", cfg.Admin.Username)
	cfg.Admin.Email = getEnv("ADMIN_EMAIL", cfg.Admin.Email)
	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", cfg.Admin.Password)

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid redis database")
		}
		cfg.Redis.RedisDB = db
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid session ttl: %w", err)
		}
		cfg.App.SessionTTL = ttl
	}

	if v := os.Getenv("CART_MAX_LINES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.New("invalid cart max lines")
		}
		cfg.App.CartMaxLines = n
	}

	if v := os.Getenv("SECURE_COOKIE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("invalid secure cookie flag")
		}
		cfg.App.SecureCookie = secure
	}

	if v := os.Getenv("AUTH_RATE_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return errors.New("invalid auth rate limit")
		}
		cfg.RateLimit.AuthPerSecond = rps
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
