package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Environment string
	Name        string
	Version     string
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	JWT         JWTConfig
	S3          S3Config
	Booking     BookingConfig
	Zoom        ZoomConfig
	Stripe      StripeConfig
	SendGrid    SendGridConfig
	Twilio      TwilioConfig
	Jobs        JobsConfig
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxHeaderMB  int
}

type PostgresConfig struct {
	Host               string
	Port               string
	Username           string
	Password           string
	DBName             string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	MaxLifetime        time.Duration
}

type JWTConfig struct {
	SigningKey      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// BookingConfig задает дневную сетку слотов и границы длительности сеанса.
type BookingConfig struct {
	DayStart           string
	DayEnd             string
	StepMinutes        int
	DefaultDurationMin int
	MinDurationMin     int
	MaxDurationMin     int
	ReminderWindow     time.Duration
}

type ZoomConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AccountUser  string
}

type StripeConfig struct {
	SecretKey       string
	WebhookSecret   string
	Currency        string
	SessionPriceMin int64
	SuccessURL      string
	CancelURL       string
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type JobsConfig struct {
	CompleteSpec string
	ReminderSpec string
}

func NewConfig() (*Config, error) {
	httpReadTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	httpWriteTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	postgresMaxLifetime, err := time.ParseDuration(getEnv("POSTGRES_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, err
	}

	jwtAccessTokenTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_TTL", "15m"))
	if err != nil {
		return nil, err
	}

	jwtRefreshTokenTTL, err := time.ParseDuration(getEnv("JWT_REFRESH_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, err
	}

	reminderWindow, err := time.ParseDuration(getEnv("BOOKING_REMINDER_WINDOW", "1h"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		Name:        getEnv("APP_NAME", "psylink"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		HTTP: HTTPConfig{
			Port:         getEnv("HTTP_PORT", "8080"),
			ReadTimeout:  httpReadTimeout,
			WriteTimeout: httpWriteTimeout,
			MaxHeaderMB:  getEnvAsInt("HTTP_MAX_HEADER_MB", 1),
		},
		Postgres: PostgresConfig{
			Host:               getEnv("POSTGRES_HOST", "localhost"),
			Port:               getEnv("POSTGRES_PORT", "5432"),
			Username:           getEnv("POSTGRES_USER", "postgres"),
			Password:           getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:             getEnv("POSTGRES_DB", "psylink"),
			SSLMode:            getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConnections:     getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("POSTGRES_MAX_IDLE_CONNECTIONS", 5),
			MaxLifetime:        postgresMaxLifetime,
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "your_secret_key"),
			AccessTokenTTL:  jwtAccessTokenTTL,
			RefreshTokenTTL: jwtRefreshTokenTTL,
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("S3_BUCKET", "psylink"),
			UseSSL:          getEnv("S3_USE_SSL", "true") == "true",
		},
		Booking: BookingConfig{
			DayStart:           getEnv("BOOKING_DAY_START", "08:00"),
			DayEnd:             getEnv("BOOKING_DAY_END", "20:00"),
			StepMinutes:        getEnvAsInt("BOOKING_STEP_MINUTES", 30),
			DefaultDurationMin: getEnvAsInt("BOOKING_DEFAULT_DURATION", 50),
			MinDurationMin:     getEnvAsInt("BOOKING_MIN_DURATION", 15),
			MaxDurationMin:     getEnvAsInt("BOOKING_MAX_DURATION", 240),
			ReminderWindow:     reminderWindow,
		},
		Zoom: ZoomConfig{
			ClientID:     getEnv("ZOOM_CLIENT_ID", ""),
			ClientSecret: getEnv("ZOOM_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("ZOOM_REDIRECT_URI", ""),
			AccountUser:  getEnv("ZOOM_ACCOUNT_USER", "me"),
		},
		Stripe: StripeConfig{
			SecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:        getEnv("STRIPE_CURRENCY", "clp"),
			SessionPriceMin: int64(getEnvAsInt("STRIPE_SESSION_PRICE", 20000)),
			SuccessURL:      getEnv("STRIPE_SUCCESS_URL", "http://localhost:8100/pago/exitoso"),
			CancelURL:       getEnv("STRIPE_CANCEL_URL", "http://localhost:8100/pago/fallido"),
		},
		SendGrid: SendGridConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", "no-reply@psylink.cl"),
			FromName:  getEnv("SENDGRID_FROM_NAME", "PsyLink"),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		Jobs: JobsConfig{
			CompleteSpec: getEnv("JOBS_COMPLETE_SPEC", "*/10 * * * *"),
			ReminderSpec: getEnv("JOBS_REMINDER_SPEC", "*/15 * * * *"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value := 0
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}

	return value
}
