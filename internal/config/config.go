package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string `validate:"required"`
	BaseURL string `validate:"required,url"`
	DBDSN   string `validate:"required"`

	Payrexx  PayrexxConfig
	SMTP     SMTPConfig
	Mailtrap MailtrapConfig

	// MailDriver selects the outbound mail transport: "smtp" (default)
	// or "mailtrap".
	MailDriver string `validate:"oneof=smtp mailtrap"`

	// AdminAPIToken guards the /admin surface; empty disables it.
	AdminAPIToken string

	StoreName string
}

// PayrexxConfig is the gateway credential surface. Instance name and
// secret key may be empty; the manager refuses every operation until
// both are set.
type PayrexxConfig struct {
	InstanceName string
	SecretKey    string
	// RequestTimeout in seconds, 10 when unset
	RequestTimeout int `validate:"gte=0"`
}

type MailtrapConfig struct {
	APIURL   string
	APIToken string
}

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // "", "tls" or "starttls"
	SkipVerifyTLS bool
	FromName      string
	FromAddr      string
}

// Load reads the environment (a .env file is honored when present) and
// validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          getenv("ADDR", ":8080"),
		BaseURL:       getenv("BASE_URL", "http://localhost:8080"),
		DBDSN:         os.Getenv("DB_DSN"),
		StoreName:     getenv("STORE_NAME", "Shop"),
		MailDriver:    getenv("MAIL_DRIVER", "smtp"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		Mailtrap: MailtrapConfig{
			APIURL:   os.Getenv("MAILTRAP_API_URL"),
			APIToken: os.Getenv("MAILTRAP_API_TOKEN"),
		},
		Payrexx: PayrexxConfig{
			InstanceName:   os.Getenv("PAYREXX_INSTANCE"),
			SecretKey:      os.Getenv("PAYREXX_SECRET_KEY"),
			RequestTimeout: getenvInt("PAYREXX_REQUEST_TIMEOUT", 0),
		},
		SMTP: SMTPConfig{
			Host:          getenv("SMTP_HOST", "localhost"),
			Port:          getenv("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: os.Getenv("SMTP_SKIP_VERIFY_TLS") == "1",
			FromName:      getenv("SMTP_FROM_NAME", "Shop"),
			FromAddr:      getenv("SMTP_FROM_ADDR", "no-reply@local.test"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
