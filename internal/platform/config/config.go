package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// StateBackend selects where the cache and rate limiter keep state:
	// "memory" for a single instance, "redis" for multi-instance deployments.
	StateBackend string

	SandboxURL        string
	SandboxTimeout    time.Duration
	MaxCodeLength     int
	ParticipantWindow time.Duration

	LeaderboardCacheTTL  time.Duration
	ParticipantsCacheTTL time.Duration
	CacheSweepInterval   time.Duration

	APIRateLimit     int
	APIRateWindow    time.Duration
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort: getEnv("API_PORT", "8080"),
		JWTKey:  []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:  time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "livechallenge_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		StateBackend: getEnv("STATE_BACKEND", "memory"),

		SandboxURL:        getEnv("SANDBOX_URL", "http://localhost:9000/execute"),
		SandboxTimeout:    time.Duration(getEnvAsInt("SANDBOX_TIMEOUT_MS", 5000)) * time.Millisecond,
		MaxCodeLength:     getEnvAsInt("MAX_CODE_LENGTH", 50000),
		ParticipantWindow: time.Duration(getEnvAsInt("PARTICIPANT_WINDOW_SECONDS", 1800)) * time.Second,

		LeaderboardCacheTTL:  time.Duration(getEnvAsInt("LEADERBOARD_CACHE_TTL_MS", 30000)) * time.Millisecond,
		ParticipantsCacheTTL: time.Duration(getEnvAsInt("PARTICIPANTS_CACHE_TTL_MS", 10000)) * time.Millisecond,
		CacheSweepInterval:   time.Duration(getEnvAsInt("CACHE_SWEEP_INTERVAL_MS", 60000)) * time.Millisecond,

		APIRateLimit:     getEnvAsInt("API_RATE_LIMIT", 100),
		APIRateWindow:    time.Duration(getEnvAsInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:    getEnvAsInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:   time.Duration(getEnvAsInt("AUTH_RATE_WINDOW_SECONDS", 900)) * time.Second,
		SubmitRateLimit:  getEnvAsInt("SUBMIT_RATE_LIMIT", 10),
		SubmitRateWindow: time.Duration(getEnvAsInt("SUBMIT_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
