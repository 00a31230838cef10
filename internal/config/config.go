package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)


type Config struct {
	Env string
	Port int

	MongoURI string
	MongoDB string

	JWTSecret string
	SessionTTL time.Duration
	OTPTTL time.Duration

	SendgridKey string
	EmailFrom string
	EmailFromName string

	RedisAddr string
	RedisPassword string
	RedisDB int

	S3Bucket string
	AWSRegion string

	OtelEndpoint string
	CORSOrigins []string

	AdminEmail string
	AdminPassword string
	AdminName string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		MongoURI: getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "karigarhub"),

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL: getEnvDuration("SESSION_TTL", 168*time.Hour),
		OTPTTL:     getEnvDuration("OTP_TTL", 10*time.Minute),

		SendgridKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "no-reply@karigarhub.app"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "KarigarHub"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		S3Bucket:  getEnv("S3_BUCKET", ""),
		AWSRegion: getEnv("AWS_REGION", "ap-south-1"),

		OtelEndpoint: getEnv("OTEL_ENDPOINT", ""),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "")),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Platform Admin"),
	}
}

func WithTimeout(duration time.Duration)(context.Context, context.CancelFunc){
	return context.WithTimeout(context.Background(),duration)
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
