package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Booking  BookingConfig
	Gateway  GatewayConfig
	Webhook  WebhookConfig
	Calendar CalendarConfig
	Mail     MailConfig
	Events   EventsConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5.5*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type BookingConfig struct {
	Currency          string        `envconfig:"BOOKING_CURRENCY" default:"INR"`
	ScheduleTimeZone  string        `envconfig:"BOOKING_SCHEDULE_TIMEZONE" default:"Asia/Kolkata"`
	IdempotencyTTL    time.Duration `envconfig:"BOOKING_IDEMPOTENCY_TTL" default:"24h"`
	SideEffectTimeout time.Duration `envconfig:"BOOKING_SIDE_EFFECT_TIMEOUT" default:"30s"`
}

// Location falls back to UTC when the configured zone is unknown to the host.
func (c BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

const (
	GatewayModeMock = "mock"
	GatewayModeLive = "live"
)

type GatewayConfig struct {
	Mode                string        `envconfig:"GATEWAY_MODE" default:"mock"`
	BaseURL             string        `envconfig:"GATEWAY_BASE_URL" default:"https://smartgatewayuat.hdfcbank.com"`
	APIKey              string        `envconfig:"GATEWAY_API_KEY"`
	MerchantID          string        `envconfig:"GATEWAY_MERCHANT_ID"`
	PaymentPageClientID string        `envconfig:"GATEWAY_PAYMENT_PAGE_CLIENT_ID"`
	ReturnURL           string        `envconfig:"GATEWAY_RETURN_URL" default:"http://localhost:3000/payments/return"`
	Timeout             time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
	MaxRetries          int           `envconfig:"GATEWAY_MAX_RETRIES" default:"2"`
}

type WebhookConfig struct {
	Secret          string `envconfig:"WEBHOOK_SECRET"`
	SignatureHeader string `envconfig:"WEBHOOK_SIGNATURE_HEADER" default:"X-Webhook-Signature"`
}

type CalendarConfig struct {
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	CalendarID         string `envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`
}

func (c CalendarConfig) Enabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

type MailConfig struct {
	SMTPHost string `envconfig:"SMTP_HOST"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"MAIL_FROM" default:"sessions@mentor-booking.local"`
}

type EventsConfig struct {
	RabbitURL string `envconfig:"RABBIT_URL"`
	Exchange  string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
}

type TracingConfig struct {
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"mentor-booking"`
	Environment  string `envconfig:"ENV" default:"dev"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	// .env is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Gateway.Mode != GatewayModeMock && cfg.Gateway.Mode != GatewayModeLive {
		return Config{}, fmt.Errorf("invalid GATEWAY_MODE %q", cfg.Gateway.Mode)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 20,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Booking: BookingConfig{
			Currency:          "INR",
			ScheduleTimeZone:  "UTC",
			IdempotencyTTL:    24 * time.Hour,
			SideEffectTimeout: 5 * time.Second,
		},
		Gateway: GatewayConfig{
			Mode:       GatewayModeMock,
			BaseURL:    "http://gateway.test",
			ReturnURL:  "http://localhost:3000/payments/return",
			Timeout:    time.Second,
			MaxRetries: 0,
		},
		Webhook: WebhookConfig{
			Secret:          "test-webhook-secret",
			SignatureHeader: "X-Webhook-Signature",
		},
		Calendar: CalendarConfig{
			CalendarID: "primary",
		},
		Mail: MailConfig{
			From: "sessions@mentor-booking.test",
		},
		Events: EventsConfig{
			Exchange: "booking.exchange",
		},
		Tracing: TracingConfig{
			ServiceName: "mentor-booking-test",
			Environment: "test",
		},
	}
}
