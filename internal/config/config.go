package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort string
	IsProd     bool

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ListCacheTTL  time.Duration

	JWTSecret     string
	JWTExpiration time.Duration

	// Default admin seeded at startup if absent.
	AdminEmail    string
	AdminPassword string

	// Policy bounds for spots provisioned per lot.
	MinSpotsPerLot int
	MaxSpotsPerLot int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, _ := strconv.Atoi(getEnv("LIST_CACHE_TTL_SECONDS", "30"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	minSpots, _ := strconv.Atoi(getEnv("MIN_SPOTS_PER_LOT", "5"))
	maxSpots, _ := strconv.Atoi(getEnv("MAX_SPOTS_PER_LOT", "50"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		IsProd:     getEnv("IS_PROD", "false") == "true",

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASS", ""),
		RedisDB:       redisDB,
		ListCacheTTL:  time.Duration(cacheTTL) * time.Second,

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiration: time.Duration(jwtExpHours) * time.Hour,

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@gmail.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "Admin@123"),

		MinSpotsPerLot: minSpots,
		MaxSpotsPerLot: maxSpots,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
