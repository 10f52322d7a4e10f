package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Blockchain BlockchainConfig
	Auth       AuthConfig
	Security   SecurityConfig
	Jobs       JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ChainConfig describes one supported chain and its payment contract
type ChainConfig struct {
	ChainID         string
	RPCURL          string
	PaymentContract string
}

// BlockchainConfig holds the supported chains keyed by chain id and the
// confirmation depth required before a purchase is credited.
type BlockchainConfig struct {
	Chains           map[string]ChainConfig
	MinConfirmations uint64
	LookupTimeout    time.Duration
}

// AuthConfig holds wallet authentication settings
type AuthConfig struct {
	NonceTTL   time.Duration
	SIWEDomain string
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	SessionEncryptionKey string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	ReconcileInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "chaincomics"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Blockchain: BlockchainConfig{
			Chains: map[string]ChainConfig{
				"84532": {
					ChainID:         "84532",
					RPCURL:          getEnv("BASE_SEPOLIA_RPC_URL", "https://sepolia.base.org"),
					PaymentContract: getEnv("BASE_SEPOLIA_PAYMENT_CONTRACT", ""),
				},
				"8453": {
					ChainID:         "8453",
					RPCURL:          getEnv("BASE_RPC_URL", "https://mainnet.base.org"),
					PaymentContract: getEnv("BASE_PAYMENT_CONTRACT", ""),
				},
			},
			MinConfirmations: uint64(getEnvAsInt("MIN_CONFIRMATIONS", 3)),
			LookupTimeout:    getEnvAsDuration("CHAIN_LOOKUP_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			NonceTTL:   getEnvAsDuration("AUTH_NONCE_TTL", 5*time.Minute),
			SIWEDomain: getEnv("AUTH_SIWE_DOMAIN", "chain-comics.app"),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		Jobs: JobsConfig{
			ReconcileInterval: getEnvAsDuration("BALANCE_RECONCILE_INTERVAL", 24*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
