// config описывает конфигурацию marketplace-сервиса и её загрузку
// из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
//
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	Cookies  CookieConfig  `yaml:"cookies"`
	DB       DBConfig      `yaml:"db"`
	S3       S3Config      `yaml:"s3"`
	Uploads  UploadConfig  `yaml:"uploads"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — публичный HTTP-сервер (API + health/metrics).
type HTTPConfig struct {
	Host     string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api/v1"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и проверки токенов и хэширования паролей.
// Access и refresh подписываются разными ключами.
type AuthConfig struct {
	AccessTokenSecret  string        `yaml:"access_token_secret" env:"ACCESS_TOKEN_SECRET" env-required:"true"`
	RefreshTokenSecret string        `yaml:"refresh_token_secret" env:"REFRESH_TOKEN_SECRET" env-required:"true"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_EXPIRY" env-default:"1h"`
	RefreshTokenTTL    time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_EXPIRY" env-default:"168h"`
	Issuer             string        `yaml:"issuer" env:"TOKEN_ISSUER" env-default:"marketplace"`
	BcryptCost         int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// CookieConfig — атрибуты cookie с токенами.
type CookieConfig struct {
	Secure   bool   `yaml:"secure" env:"COOKIE_SECURE" env-default:"true"`
	Domain   string `yaml:"domain" env:"COOKIE_DOMAIN"`
	SameSite string `yaml:"same_site" env:"COOKIE_SAME_SITE" env-default:"lax"`
}

// SameSiteMode переводит строковое значение в http.SameSite.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// DBConfig — подключение к MongoDB. Имя базы берётся из пути URI.
type DBConfig struct {
	URL string `yaml:"url" env:"MONGODB_URI" env-required:"true"`
}

// S3Config — объектное хранилище для изображений и файлов.
type S3Config struct {
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	RootUser      string `yaml:"root_user" env:"S3_ROOT_USER" env-required:"true"`
	RootPassword  string `yaml:"root_password" env:"S3_ROOT_PASSWORD" env-required:"true"`
	Bucket        string `yaml:"bucket" env:"S3_BUCKET" env-required:"true"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// UploadConfig — ограничения на загружаемые файлы.
type UploadConfig struct {
	MaxSizeBytes        int64    `yaml:"max_size_bytes" env:"UPLOAD_MAX_SIZE_BYTES" env-default:"5242880"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"UPLOAD_ALLOWED_CONTENT_TYPES" env-separator:"," env-default:"image/jpeg,image/png,image/webp"`
}

// LimitsConfig — пагинация списка товаров.
type LimitsConfig struct {
	Default int32 `yaml:"default" env:"DEFAULT_LIMIT" env-default:"20"`
	Max     int32 `yaml:"max" env:"MAX_LIMIT" env-default:"100"`
}

// TimeoutConfig — общий дедлайн обработки запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла; ReadConfig сам накладывает ENV поверх YAML.
	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений после загрузки.
func (c *Config) validate() error {
	if c.Auth.AccessTokenSecret == "" || c.Auth.RefreshTokenSecret == "" {
		return fmt.Errorf("auth secrets are required")
	}

	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		return fmt.Errorf("auth.access_token_secret and auth.refresh_token_secret must differ")
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be > 0")
	}

	if c.Auth.AccessTokenTTL >= c.Auth.RefreshTokenTTL {
		return fmt.Errorf("auth.access_token_ttl must be shorter than auth.refresh_token_ttl")
	}

	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > 14 {
		return fmt.Errorf("auth.bcrypt_cost must be within [10, 14]")
	}

	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.S3.Endpoint == "" || c.S3.Bucket == "" {
		return fmt.Errorf("s3.endpoint and s3.bucket are required")
	}

	if c.Uploads.MaxSizeBytes <= 0 {
		return fmt.Errorf("uploads.max_size_bytes must be > 0")
	}

	if len(c.Uploads.AllowedContentTypes) == 0 {
		return fmt.Errorf("uploads.allowed_content_types must not be empty")
	}

	if c.Limits.Default <= 0 || c.Limits.Max <= 0 {
		return fmt.Errorf("limits must be > 0")
	}

	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}

	return nil
}
