package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Checkout CheckoutConfig
	SMTP     SMTPConfig
	S3       S3Config
	CORS     CORSConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TokenTTL   time.Duration
}

type PaymentConfig struct {
	Razorpay RazorpayConfig
}

type RazorpayConfig struct {
	KeyID        string
	KeySecret    string
	BaseURL      string
	MerchantName string
	ThemeColor   string
	ImageURL     string
}

// CheckoutConfig bounds the in-flight checkout latch. An abandoned widget
// (tab closed without dismissing) is released after Timeout.
type CheckoutConfig struct {
	Timeout       time.Duration
	CurrencyCode  string
	ReaperSpec    string
	DownloadTTL   time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "dev-session-secret"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "storefront_session"),
			TokenTTL:   parseDuration(getEnv("SESSION_TOKEN_TTL", "8760h")),
		},
		Payment: PaymentConfig{
			Razorpay: RazorpayConfig{
				KeyID:        getEnv("RAZORPAY_KEY_ID", ""),
				KeySecret:    getEnv("RAZORPAY_KEY_SECRET", ""),
				BaseURL:      getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
				MerchantName: getEnv("RAZORPAY_MERCHANT_NAME", "Arham Builds"),
				ThemeColor:   getEnv("RAZORPAY_THEME_COLOR", "#2563eb"),
				ImageURL:     getEnv("RAZORPAY_IMAGE_URL", ""),
			},
		},
		Checkout: CheckoutConfig{
			Timeout:      parseDuration(getEnv("CHECKOUT_TIMEOUT", "10m")),
			CurrencyCode: getEnv("CHECKOUT_CURRENCY", "INR"),
			ReaperSpec:   getEnv("CHECKOUT_REAPER_SPEC", "@every 1m"),
			DownloadTTL:  parseDuration(getEnv("CHECKOUT_DOWNLOAD_TTL", "15m")),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			To:       getEnv("CONTACT_TO", ""),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-south-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "storefront-templates"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Configured reports whether the payment gateway has credentials. Checkout is
// refused, not attempted, when it does not.
func (c *RazorpayConfig) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

func (c *SMTPConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration %q, using 0", value)
		return 0
	}
	return d
}

func parseInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func parseSlice(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
