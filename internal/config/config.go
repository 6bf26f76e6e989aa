package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type FulfillmentConfig struct {
	Env            string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer     `yaml:"http_server"`
	OrderDB        `yaml:"order_db"`
	LogConfig      `yaml:"log_config"`
	Providers      `yaml:"providers"`
	Confirmation   `yaml:"confirmation"`
	Reconciliation `yaml:"reconciliation"`
	Admin          `yaml:"admin"`
	KafkaService   `yaml:"kafka-service"`
	Notifier       `yaml:"notifier"`
	Refunds        `yaml:"refunds"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type OrderDB struct {
	Dsn           string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationPath string `yaml:"migration_path" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
}

type Providers struct {
	CardSigningSecret   string `yaml:"card_signing_secret" env:"CARD_SIGNING_SECRET"`
	WalletVerifyURL     string `yaml:"wallet_verify_url"`
	WalletSkipVerify    bool   `yaml:"wallet_skip_verify" env-default:"false"`
	CryptoWebhookSecret string `yaml:"crypto_webhook_secret" env:"CRYPTO_WEBHOOK_SECRET"`
}

type Confirmation struct {
	TokenTTL time.Duration `yaml:"token_ttl" env-default:"48h"`
	BaseURL  string        `yaml:"base_url" env-default:"http://localhost:8080"`
}

type Reconciliation struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"10m"`
	HoldTimeout   time.Duration `yaml:"hold_timeout" env-default:"24h"`
	BatchSize     int           `yaml:"batch_size" env-default:"100"`
	CronSecret    string        `yaml:"cron_secret" env:"RECONCILE_CRON_SECRET"`
}

type Admin struct {
	OperatorToken string `yaml:"operator_token" env:"ADMIN_OPERATOR_TOKEN"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"order-lifecycle-events"`
}

type Notifier struct {
	MailAPIURL   string `yaml:"mail_api_url"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id" env:"MAIL_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"MAIL_CLIENT_SECRET"`
	FromAddress  string `yaml:"from_address" env-default:"orders@crestline.media"`
}

type Refunds struct {
	CardRefundURL   string `yaml:"card_refund_url"`
	WalletRefundURL string `yaml:"wallet_refund_url"`
	CryptoRefundURL string `yaml:"crypto_refund_url"`
	CardAPIKey      string `yaml:"card_api_key" env:"CARD_API_KEY"`
	WalletAPIKey    string `yaml:"wallet_api_key" env:"WALLET_API_KEY"`
	CryptoAPIKey    string `yaml:"crypto_api_key" env:"CRYPTO_API_KEY"`
}

func MustLoad() *FulfillmentConfig {
	configPath := os.Getenv("FULFILLMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("FULFILLMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg FulfillmentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
