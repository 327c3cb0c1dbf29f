package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64  `mapstructure:"ADMIN_CHAT_ID"`
	AdminChannelID   int64  `mapstructure:"ADMIN_CHANNEL_ID"`
	DB_URL           string `mapstructure:"DB_URL"`

	HTTPListenAddr   string `mapstructure:"HTTP_LISTEN_ADDR"`
	MetricsNamespace string `mapstructure:"METRICS_NAMESPACE"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`

	NowpaymentsBaseURL   string `mapstructure:"NOWPAYMENTS_BASE_URL"`
	NowpaymentsAPIKey    string `mapstructure:"NOWPAYMENTS_API_KEY"`
	NowpaymentsIPNSecret string `mapstructure:"NOWPAYMENTS_IPN_SECRET"`
	PayCurrency          string `mapstructure:"NOWPAYMENTS_PAY_CURRENCY"`
	SuccessURL           string `mapstructure:"NOWPAYMENTS_SUCCESS_URL"`
	CancelURL            string `mapstructure:"NOWPAYMENTS_CANCEL_URL"`

	MinDepositEUR int64 `mapstructure:"MIN_DEPOSIT_EUR"`
	CustomMinEUR  int64 `mapstructure:"CUSTOM_MIN_EUR"`

	SupportHandle string `mapstructure:"SUPPORT_HANDLE"`
	SupportURL    string `mapstructure:"SUPPORT_URL"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("HTTP_LISTEN_ADDR", ":8080")
	viper.SetDefault("METRICS_NAMESPACE", "shopbot")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("NOWPAYMENTS_BASE_URL", "https://api.nowpayments.io")
	viper.SetDefault("NOWPAYMENTS_PAY_CURRENCY", "btc")
	viper.SetDefault("NOWPAYMENTS_SUCCESS_URL", "https://t.me/")
	viper.SetDefault("NOWPAYMENTS_CANCEL_URL", "https://t.me/")
	viper.SetDefault("MIN_DEPOSIT_EUR", 200)
	viper.SetDefault("CUSTOM_MIN_EUR", 1)

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}

	if config.TelegramBotToken == "" {
		return config, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if config.AdminChatID == 0 {
		return config, fmt.Errorf("ADMIN_CHAT_ID is required")
	}
	if config.NowpaymentsAPIKey == "" {
		return config, fmt.Errorf("NOWPAYMENTS_API_KEY is required")
	}

	return config, nil
}
