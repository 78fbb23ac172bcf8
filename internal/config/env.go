package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr     string
	GinMode     string
	LogLevel    string
	Storage     string
	DBDSN       string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string
	// AdminUsername/AdminPassword seed the first admin account when both are set.
	AdminUsername string
	AdminPassword string
}

// LoadEnv reads .env (when present) and the process environment.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		AppAddr:   getEnv("APP_ADDR", ":8080"),
		GinMode:   getEnv("GIN_MODE", ""),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Storage:   strings.ToLower(getEnv("STORAGE", "mysql")),
		DBDSN:     getEnv("DB_DSN", ""),
		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-me"),
		JWTTTL:    time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if env.DBDSN == "" {
		env.DBDSN = buildDSN(
			getEnv("DB_USER", "root"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_HOST", "127.0.0.1:3306"),
			getEnv("DB_NAME", "transporte"),
		)
	}
	return env
}

func buildDSN(user, password, host, name string) string {
	return user + ":" + password + "@tcp(" + host + ")/" + name +
		"?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
