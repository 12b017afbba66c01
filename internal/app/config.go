package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env, Port string
	DBDSN     string

	JWTSecret              string
	TokenTTL               time.Duration
	AdminEmail             string
	AdminPassword          string
	AllowAdminRegistration bool

	KafkaBrokers    string
	KafkaOrderTopic string

	SMTPHost, SMTPPort, SMTPFrom string

	ConsulAddr  string
	ServiceName string
	PublicHost  string
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func LoadConfig() Config {
	ttlHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "168"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 168
	}
	allowAdmin, _ := strconv.ParseBool(getEnv("ALLOW_ADMIN_REGISTRATION", "false"))

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnv("APP_PORT", "8080"),
		DBDSN: os.Getenv("DB_DSN"),

		JWTSecret:              getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:               time.Duration(ttlHours) * time.Hour,
		AdminEmail:             os.Getenv("ADMIN_EMAIL"),
		AdminPassword:          os.Getenv("ADMIN_PASSWORD"),
		AllowAdminRegistration: allowAdmin,

		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "marketplace.orders"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "1025"),
		SMTPFrom: getEnv("SMTP_FROM", "no-reply@marketplace.local"),

		ConsulAddr:  os.Getenv("CONSUL_ADDR"),
		ServiceName: getEnv("SERVICE_NAME", "marketplace"),
		PublicHost:  os.Getenv("PUBLIC_HOST"),
	}
}

func (c Config) IsProd() bool { return c.Env == "prod" }
