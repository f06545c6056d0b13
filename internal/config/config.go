package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	Storage StorageConfig `yaml:"storage"`
	Enquiry EnquiryConfig `yaml:"enquiry"`
}

type ServerConfig struct {
	Host              string        `yaml:"host"                env:"HTTP_HOST"                env-default:"localhost"  validate:"required"`
	Port              string        `yaml:"port"                env:"HTTP_PORT"                env-default:"8092"       validate:"required,numeric"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"20s"        validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"HTTP_SHUTDOWN_TIMEOUT"    env-default:"4s"         validate:"gt=0"`
	LivenessEndpoint  string        `yaml:"liveness_endpoint"   env:"HTTP_LIVENESS_ENDPOINT"   env-default:"/liveness"  validate:"required,startswith=/"`
}

type LoggerConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info" validate:"required,oneof=debug info warn error"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"      env:"STORAGE_DRIVER"      env-default:"memory"       validate:"required,oneof=memory sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH" env-default:"enquiries.db" validate:"required_if=Driver sqlite"`
	Verbose    bool   `yaml:"verbose"     env:"STORAGE_VERBOSE"`
}

type EnquiryConfig struct {
	// CatalogPath points at a rooms/offers YAML file; empty uses the built-in catalog.
	CatalogPath   string `yaml:"catalog_path"   env:"ENQUIRY_CATALOG_PATH"`
	DefaultLocale string `yaml:"default_locale" env:"ENQUIRY_DEFAULT_LOCALE" env-default:"en"  validate:"required,bcp47_language_tag"`
	PhonePrefix   string `yaml:"phone_prefix"   env:"ENQUIRY_PHONE_PREFIX"   env-default:"+49" validate:"required,startswith=+"`
	BookingWindow int    `yaml:"booking_window" env:"ENQUIRY_BOOKING_WINDOW" env-default:"730" validate:"min=1"`
	MinNights     int    `yaml:"min_nights"     env:"ENQUIRY_MIN_NIGHTS"     env-default:"1"   validate:"min=1"`
}

func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Load reads the file named by CONFIG_PATH when set, otherwise the
// environment alone, and validates the result.
func Load() (*Config, error) {
	var (
		cfg Config
		err error
	)

	if path, ok := os.LookupEnv("CONFIG_PATH"); ok && path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
