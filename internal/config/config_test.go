package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(localhost:3306)/shop?parseTime=true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "Shop", cfg.StoreName)
	assert.Zero(t, cfg.Payrexx.RequestTimeout)
	assert.Equal(t, "smtp", cfg.MailDriver)
	// gateway credentials and the admin token stay optional
	assert.Empty(t, cfg.Payrexx.InstanceName)
	assert.Empty(t, cfg.Payrexx.SecretKey)
	assert.Empty(t, cfg.AdminAPIToken)
}

func TestLoadRejectsUnknownMailDriver(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(db:3306)/shop")
	t.Setenv("MAIL_DRIVER", "pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(db:3306)/shop")
	t.Setenv("ADDR", ":9090")
	t.Setenv("BASE_URL", "https://shop.example")
	t.Setenv("STORE_NAME", "Demo Shop")
	t.Setenv("PAYREXX_INSTANCE", "demo-shop")
	t.Setenv("PAYREXX_SECRET_KEY", "secret-key")
	t.Setenv("PAYREXX_REQUEST_TIMEOUT", "30")
	t.Setenv("SMTP_HOST", "mail.shop.example")
	t.Setenv("SMTP_TLS_MODE", "starttls")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://shop.example", cfg.BaseURL)
	assert.Equal(t, "Demo Shop", cfg.StoreName)
	assert.Equal(t, "demo-shop", cfg.Payrexx.InstanceName)
	assert.Equal(t, 30, cfg.Payrexx.RequestTimeout)
	assert.Equal(t, "mail.shop.example", cfg.SMTP.Host)
	assert.Equal(t, "starttls", cfg.SMTP.TLSMode)
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(db:3306)/shop")
	t.Setenv("BASE_URL", "not a url")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadIgnoresUnparseableTimeout(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(db:3306)/shop")
	t.Setenv("PAYREXX_REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Payrexx.RequestTimeout)
}
