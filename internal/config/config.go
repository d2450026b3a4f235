package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/megstore/storefront/internal/domain"
	"github.com/megstore/storefront/internal/gateway"
	"github.com/megstore/storefront/internal/messaging"
)

const (
	ModeRemote   = "remote"
	ModeMemory   = "memory"
	ModePostgres = "postgres"
)

type Config struct {
	Port            string                   `yaml:"port"`
	ShutdownTimeout time.Duration            `yaml:"shutdown_timeout"`
	Database        DatabaseConfig           `yaml:"database"`
	RabbitMQ        messaging.RabbitMQConfig `yaml:"rabbitmq"`
	Backend         gateway.Config           `yaml:"backend"`
	// Catalog is "remote" (product, order and coupon services) or "memory".
	Catalog string `yaml:"catalog"`
	// Store is "postgres" or "memory" for carts and sessions.
	Store string     `yaml:"store"`
	Seed  SeedConfig `yaml:"seed"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// SeedConfig fills the in-memory catalog and coupon store.
type SeedConfig struct {
	Products []SeedProduct `yaml:"products"`
	Coupons  []SeedCoupon  `yaml:"coupons"`
}

type SeedProduct struct {
	ID                 int64  `yaml:"id"`
	Name               string `yaml:"name"`
	Price              string `yaml:"price"`
	DiscountPercentage string `yaml:"discount_percentage"`
	StockQuantity      int    `yaml:"stock_quantity"`
	CategoryID         int64  `yaml:"category_id"`
}

type SeedCoupon struct {
	Code      string     `yaml:"code"`
	Type      string     `yaml:"type"`
	Value     string     `yaml:"value"`
	Inactive  bool       `yaml:"inactive"`
	ExpiresAt *time.Time `yaml:"expires_at"`
}

func Default() Config {
	return Config{
		Port:            "8080",
		ShutdownTimeout: 10 * time.Second,
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Name:     "storefront_db",
			SSLMode:  "disable",
		},
		RabbitMQ: messaging.DefaultRabbitMQConfig(),
		Backend:  gateway.DefaultConfig(),
		Catalog:  ModeRemote,
		Store:    ModePostgres,
	}
}

// Load builds the configuration from defaults, the YAML file named by
// STOREFRONT_CONFIG when set, and environment overrides, in that order.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over cfg; keys absent from data keep their values.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)

	cfg.Database.Host = getEnvOrDefault("DB_HOST", cfg.Database.Host)
	cfg.Database.User = getEnvOrDefault("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnvOrDefault("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnvOrDefault("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.RabbitMQ.Host = getEnvOrDefault("RABBITMQ_HOST", cfg.RabbitMQ.Host)
	cfg.RabbitMQ.Username = getEnvOrDefault("RABBITMQ_USER", cfg.RabbitMQ.Username)
	cfg.RabbitMQ.Password = getEnvOrDefault("RABBITMQ_PASSWORD", cfg.RabbitMQ.Password)
	cfg.RabbitMQ.VHost = getEnvOrDefault("RABBITMQ_VHOST", cfg.RabbitMQ.VHost)
	cfg.RabbitMQ.Exchange = getEnvOrDefault("RABBITMQ_EXCHANGE", cfg.RabbitMQ.Exchange)

	cfg.Backend.BaseURL = getEnvOrDefault("BACKEND_BASE_URL", cfg.Backend.BaseURL)
	cfg.Catalog = getEnvOrDefault("STOREFRONT_CATALOG", cfg.Catalog)
	cfg.Store = getEnvOrDefault("STOREFRONT_STORE", cfg.Store)

	var err error
	if cfg.Database.Port, err = getEnvInt("DB_PORT", cfg.Database.Port); err != nil {
		return err
	}
	if cfg.RabbitMQ.Port, err = getEnvInt("RABBITMQ_PORT", cfg.RabbitMQ.Port); err != nil {
		return err
	}
	if cfg.RabbitMQ.Enabled, err = getEnvBool("RABBITMQ_ENABLED", cfg.RabbitMQ.Enabled); err != nil {
		return err
	}
	if cfg.Backend.Timeout, err = getEnvDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Catalog {
	case ModeRemote, ModeMemory:
	default:
		return fmt.Errorf("unknown catalog mode %q", c.Catalog)
	}
	switch c.Store {
	case ModePostgres, ModeMemory:
	default:
		return fmt.Errorf("unknown store mode %q", c.Store)
	}
	if c.Catalog == ModeRemote && c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required in %s catalog mode", ModeRemote)
	}
	return nil
}

// SeedProducts converts the configured seed into catalog products.
func (c Config) SeedProducts() ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(c.Seed.Products))
	for _, p := range c.Seed.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("seed product %d price: %w", p.ID, err)
		}
		discount := decimal.Zero
		if p.DiscountPercentage != "" {
			if discount, err = decimal.NewFromString(p.DiscountPercentage); err != nil {
				return nil, fmt.Errorf("seed product %d discount: %w", p.ID, err)
			}
		}
		product := domain.Product{
			ID:                 p.ID,
			Name:               p.Name,
			Price:              price,
			DiscountPercentage: discount,
			CategoryID:         p.CategoryID,
		}
		products = append(products, product.WithStock(p.StockQuantity))
	}
	return products, nil
}

func (c Config) SeedCoupons() ([]domain.Coupon, error) {
	coupons := make([]domain.Coupon, 0, len(c.Seed.Coupons))
	for _, sc := range c.Seed.Coupons {
		value, err := decimal.NewFromString(sc.Value)
		if err != nil {
			return nil, fmt.Errorf("seed coupon %s value: %w", sc.Code, err)
		}
		coupons = append(coupons, domain.Coupon{
			Code:      domain.NormalizeCouponCode(sc.Code),
			Type:      domain.CouponType(sc.Type),
			Value:     value,
			IsActive:  !sc.Inactive,
			ExpiresAt: sc.ExpiresAt,
		})
	}
	return coupons, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
