package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Webhook  WebhookConfig
	Provider ProviderConfig
	PMS      PMSConfig
	Notify   NotifyConfig
	Status   StatusConfig
	Claim    ClaimConfig
	Sweeper  SweeperConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	URL           string
	RateLimit     int
	RateWindowSec int
}

type WebhookConfig struct {
	Secret        string
	OperatorToken string
}

type ProviderConfig struct {
	APIURL     string
	APIKey     string
	TimeoutSec int
}

type PMSConfig struct {
	APIURL     string
	APIKey     string
	TimeoutSec int
}

type NotifyConfig struct {
	URL   string
	Token string
}

// StatusConfig bounds the replica-lag compensation reads on the
// payment-status endpoint.
type StatusConfig struct {
	MaxAttempts      int
	RetryBaseMillis  int
	SuspectWindowSec int
}

// ClaimConfig controls reclaim of reservation claims left behind by a
// crashed instance.
type ClaimConfig struct {
	TTLMinutes int
}

type SweeperConfig struct {
	DelaySec int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("RATE_LIMIT", 60)
	viper.SetDefault("RATE_WINDOW_SECONDS", 60)
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 30)
	viper.SetDefault("PMS_TIMEOUT_SECONDS", 120)
	viper.SetDefault("STATUS_MAX_ATTEMPTS", 4)
	viper.SetDefault("STATUS_RETRY_BASE_MS", 250)
	viper.SetDefault("STATUS_SUSPECT_WINDOW_SECONDS", 30)
	viper.SetDefault("CLAIM_TTL_MINUTES", 10)
	viper.SetDefault("SWEEPER_DELAY_SECONDS", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			URL:           viper.GetString("REDIS_URL"),
			RateLimit:     viper.GetInt("RATE_LIMIT"),
			RateWindowSec: viper.GetInt("RATE_WINDOW_SECONDS"),
		},
		Webhook: WebhookConfig{
			Secret:        viper.GetString("WEBHOOK_SECRET"),
			OperatorToken: viper.GetString("OPERATOR_TOKEN"),
		},
		Provider: ProviderConfig{
			APIURL:     viper.GetString("PROVIDER_API_URL"),
			APIKey:     viper.GetString("PROVIDER_API_KEY"),
			TimeoutSec: viper.GetInt("PROVIDER_TIMEOUT_SECONDS"),
		},
		PMS: PMSConfig{
			APIURL:     viper.GetString("PMS_API_URL"),
			APIKey:     viper.GetString("PMS_API_KEY"),
			TimeoutSec: viper.GetInt("PMS_TIMEOUT_SECONDS"),
		},
		Notify: NotifyConfig{
			URL:   viper.GetString("NOTIFY_URL"),
			Token: viper.GetString("NOTIFY_TOKEN"),
		},
		Status: StatusConfig{
			MaxAttempts:      viper.GetInt("STATUS_MAX_ATTEMPTS"),
			RetryBaseMillis:  viper.GetInt("STATUS_RETRY_BASE_MS"),
			SuspectWindowSec: viper.GetInt("STATUS_SUSPECT_WINDOW_SECONDS"),
		},
		Claim: ClaimConfig{
			TTLMinutes: viper.GetInt("CLAIM_TTL_MINUTES"),
		},
		Sweeper: SweeperConfig{
			DelaySec: viper.GetInt("SWEEPER_DELAY_SECONDS"),
		},
	}

	return config, nil
}

func (c ClaimConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func (c SweeperConfig) Delay() time.Duration {
	return time.Duration(c.DelaySec) * time.Second
}

func (c StatusConfig) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseMillis) * time.Millisecond
}

func (c StatusConfig) SuspectWindow() time.Duration {
	return time.Duration(c.SuspectWindowSec) * time.Second
}
