package config

import (
	"fmt"
	"os"      // For environment variables
	"strconv" // For string to number conversion
	"strings"

	"github.com/joho/godotenv" // For loading .env files
)

// Store drivers
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds the application configuration
type Config struct {
	AppPort        string   // Application port
	DBDriver       string   // mysql or memory
	DBUser         string   // Database user
	DBPassword     string   // Database password
	DBHost         string   // Database host
	DBPort         string   // Database port
	DBName         string   // Database name
	JWTSecret      string   // JWT secret key
	RedisAddr      string   // Redis server address, empty disables caching
	RedisPass      string   // Redis password
	RedisDB        int      // Redis database number
	KafkaBrokers   []string // Kafka brokers, empty disables events
	KafkaUserTopic string   // Topic for user lifecycle events
	BcryptCost     int      // Password hashing work factor
	RateLimit      float64  // Requests per second per client
	RateBurst      int      // Rate limiter burst
	LogLevel       string   // logrus level name
	IsProd         bool     // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present

	cfg := &Config{
		AppPort:        getEnv("APP_PORT", "3500"),
		DBDriver:       getEnv("DB_DRIVER", DriverMySQL),
		DBUser:         getEnv("DB_USER", "root"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBName:         getEnv("DB_NAME", "notes"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaUserTopic: getEnv("KAFKA_USER_TOPIC", "user-events"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		IsProd:         os.Getenv("IS_PROD") == "true",
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = getInt("RATE_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getFloat("RATE_LIMIT", 10); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must be positive")
	}
	return nil
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=true"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
