package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/kaikyoudou/storefront/pkg/utils"
)

type Config struct {
	Env      string   `yaml:"env" env:"ENV" env-default:"local"`
	Logger   Logger   `yaml:"logger"`
	Catalog  Catalog  `yaml:"catalog"`
	Storage  Storage  `yaml:"storage"`
	Shipping Shipping `yaml:"shipping"`
	Payment  Payment  `yaml:"payment"`
}

type Logger struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Catalog struct {
	Source       string        `yaml:"source" env:"CATALOG_SOURCE" env-default:"./config/catalog.json"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env-default:"5s"`
	MaxRetries   uint64        `yaml:"max_retries" env-default:"2"`
	RelatedLimit int           `yaml:"related_limit" env-default:"3"`
}

type Storage struct {
	Driver  string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	Path    string `yaml:"path" env:"STORAGE_PATH" env-default:"./data/cart.json"`
	CartKey string `yaml:"cart_key" env-default:"kaikyoudou_cart_v1"`
	Redis   Redis  `yaml:"redis"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Shipping struct {
	FreeThreshold int64 `yaml:"free_threshold" env:"SHIPPING_FREE_THRESHOLD" env-default:"5000"`
	FlatFee       int64 `yaml:"flat_fee" env:"SHIPPING_FLAT_FEE" env-default:"500"`
}

type Payment struct {
	SettleDelay time.Duration `yaml:"settle_delay" env:"PAYMENT_SETTLE_DELAY" env-default:"2s"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
