package config

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"time"

	"venuebook/models"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// CancelRequestsPerMin limits cancellation code requests per client IP.
	CancelRequestsPerMin int `mapstructure:"CANCEL_REQUESTS_PER_MIN"`
	// ConfirmAttemptsPerMin limits code confirmations per booking.
	ConfirmAttemptsPerMin int `mapstructure:"CONFIRM_ATTEMPTS_PER_MIN"`
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed. Empty means the peer address is the client.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Storage backends.
	StoreDriver       string `mapstructure:"STORE_DRIVER"`
	VerificationStore string `mapstructure:"VERIFICATION_STORE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	OTPTTL               time.Duration `mapstructure:"OTP_TTL"`
	OTPRetention         time.Duration `mapstructure:"OTP_RETENTION"`
	VenueCacheTTL        time.Duration `mapstructure:"VENUE_CACHE_TTL"`
	InitialBookingStatus string        `mapstructure:"INITIAL_BOOKING_STATUS"`
	Timezone             string        `mapstructure:"TIMEZONE"`

	// Notification gateway.
	NotifyDriver   string `mapstructure:"NOTIFY_DRIVER"`
	NotifyAPIURL   string `mapstructure:"NOTIFY_API_URL"`
	NotifyAPIToken string `mapstructure:"NOTIFY_API_TOKEN"`

	// Background worker.
	WorkerEnabled bool   `mapstructure:"WORKER_ENABLED"`
	SweepInterval string `mapstructure:"SWEEP_INTERVAL"`

	// Venues seeds the in-memory venue directory (STORE_DRIVER=memory). In
	// the environment it is a JSON array.
	Venues []models.Venue `mapstructure:"VENUES"`
}

var AppConfig Config

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CANCEL_REQUESTS_PER_MIN", 5)
	v.SetDefault("CONFIRM_ATTEMPTS_PER_MIN", 5)
	v.SetDefault("TRUSTED_PROXIES", []string{})
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "venuebook")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("VERIFICATION_STORE", "redis")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_OTP_DB", 2)
	v.SetDefault("REDIS_QUEUE_DB", 3)
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("OTP_RETENTION", "30m")
	v.SetDefault("VENUE_CACHE_TTL", "10m")
	v.SetDefault("INITIAL_BOOKING_STATUS", string(models.StatusPending))
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("NOTIFY_DRIVER", "log")
	v.SetDefault("NOTIFY_API_URL", "")
	v.SetDefault("NOTIFY_API_TOKEN", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("SWEEP_INTERVAL", "@every 10m")
	v.SetDefault("VENUES", []models.Venue{})
}

// decodeHook extends viper's defaults so list values supplied as env strings
// decode: VENUES as JSON, everything else comma separated.
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		venuesFromJSON,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

var venuesType = reflect.TypeOf([]models.Venue{})

func venuesFromJSON(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != venuesType {
		return data, nil
	}
	raw, _ := data.(string)
	var venues []models.Venue
	if raw == "" {
		return venues, nil
	}
	if err := json.Unmarshal([]byte(raw), &venues); err != nil {
		return nil, fmt.Errorf("config: VENUES must be a JSON array: %w", err)
	}
	return venues, nil
}

// Load reads config.yaml (if present) and the environment into a Config.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates AppConfig and exits on invalid configuration.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.VerificationStore {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unknown VERIFICATION_STORE %q", c.VerificationStore)
	}
	switch c.NotifyDriver {
	case "log":
	case "whatsapp":
		if c.NotifyAPIURL == "" {
			return fmt.Errorf("config: NOTIFY_API_URL is required for the whatsapp driver")
		}
	default:
		return fmt.Errorf("config: unknown NOTIFY_DRIVER %q", c.NotifyDriver)
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("config: OTP_TTL must be positive, got %s", c.OTPTTL)
	}
	if c.OTPRetention <= 0 {
		return fmt.Errorf("config: OTP_RETENTION must be positive, got %s", c.OTPRetention)
	}
	status, err := models.ParseBookingStatus(c.InitialBookingStatus)
	if err != nil || !status.IsActive() {
		return fmt.Errorf("config: INITIAL_BOOKING_STATUS must be Pending or Confirmed, got %q", c.InitialBookingStatus)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.WorkerEnabled && c.SweepInterval == "" {
		return fmt.Errorf("config: SWEEP_INTERVAL is required when the worker is enabled")
	}
	return nil
}

// Location returns the reference time zone for calendar-day comparisons.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InitialStatus returns the status new bookings are created with.
func (c Config) InitialStatus() models.BookingStatus {
	status, err := models.ParseBookingStatus(c.InitialBookingStatus)
	if err != nil {
		return models.StatusPending
	}
	return status
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
