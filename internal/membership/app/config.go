package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/mail"
	"github.com/aussiebroadwan/membership/pkg/httpx"
)

// ConfigFileEnv names the variable pointing at an optional YAML config file.
// Environment variables override values read from the file.
const ConfigFileEnv = "CONFIG_FILE"

type Config struct {
	Env       string `yaml:"env" env:"ENV" env-default:"dev" env-description:"Environment (dev, staging, prod)"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json" env-description:"Log format (json, text)"`
	Port      int    `yaml:"port" env:"PORT" env-default:"8080" env-description:"HTTP server port"`

	DatabaseFile string `yaml:"database_file" env:"DATABASE_FILE" env-default:"membership.db" env-description:"Path to the SQLite database file"`
	PepperFile   string `yaml:"pepper_file" env:"PEPPER_FILE" env-default:"pepper" env-description:"Path to the password pepper file"`

	JWTSecret             string        `yaml:"jwt_secret" env:"JWT_SECRET" env-description:"HS256 secret; tokens cannot be issued without it"`
	JWTIssuer             string        `yaml:"jwt_issuer" env:"JWT_ISSUER" env-default:"membership" env-description:"Issuer claim for session tokens"`
	TokenTTL              time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"168h" env-description:"Session token lifetime"`
	TokenRefreshThreshold time.Duration `yaml:"token_refresh_threshold" env:"TOKEN_REFRESH_THRESHOLD" env-default:"48h" env-description:"Remaining validity below which is-login re-issues the token"`

	OTPTTL         time.Duration `yaml:"otp_ttl" env:"OTP_TTL" env-default:"5m" env-description:"One-time code lifetime"`
	OTPMaxAttempts int           `yaml:"otp_max_attempts" env:"OTP_MAX_ATTEMPTS" env-default:"5" env-description:"Wrong guesses allowed per code"`
	InviteTTL      time.Duration `yaml:"invite_ttl" env:"INVITE_TTL" env-default:"168h" env-description:"Invitation lifetime"`
	ResetTTL       time.Duration `yaml:"reset_ttl" env:"RESET_TTL" env-default:"2h" env-description:"Forgot-mail reset key lifetime"`
	PurgeRetention time.Duration `yaml:"purge_retention" env:"PURGE_RETENTION" env-default:"24h" env-description:"How long expired codes and reset keys are kept before purge"`

	APIGuard      bool   `yaml:"api_guard" env:"API_GUARD" env-default:"true" env-description:"Enforce authentication and permissions on protected routes"`
	DefaultRoleID int64  `yaml:"default_role_id" env:"DEFAULT_ROLE_ID" env-default:"3" env-description:"Role granted on self-registration"`
	PhoneRegion   string `yaml:"phone_region" env:"PHONE_REGION" env-default:"TH" env-description:"Region used to parse national phone numbers"`

	BootstrapToken string `yaml:"bootstrap_token" env:"BOOTSTRAP_TOKEN" env-description:"Token required to create the first captain; empty disables bootstrap"`

	SendStatus       bool   `yaml:"send_status" env:"SEND_STATUS" env-default:"false" env-description:"Deliver mail; when off, mail is skipped and logged"`
	SMTPHost         string `yaml:"smtp_host" env:"SMTP_HOST" env-description:"SMTP relay host"`
	SMTPPort         int    `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587" env-description:"SMTP relay port"`
	SMTPUsername     string `yaml:"smtp_username" env:"SMTP_USERNAME" env-description:"SMTP user, also the sender address"`
	SMTPPassword     string `yaml:"smtp_password" env:"SMTP_PASSWORD" env-description:"SMTP password"`
	EmailFromName    string `yaml:"email_from_name" env:"EMAIL_FROM_NAME" env-default:"Membership" env-description:"Display name of the sender"`
	EmailCompanyName string `yaml:"email_company_name" env:"EMAIL_COMPANY_NAME" env-default:"Membership" env-description:"Company name shown in mail"`
	FrontURL         string `yaml:"front_url" env:"FRONT_URL" env-default:"http://localhost:3000" env-description:"Base URL of the front end"`
	FrontResetPath   string `yaml:"front_reset_path" env:"FRONT_RESET_PATH" env-default:"/reset-password" env-description:"Front-end path of the reset page"`
	FrontInvitePath  string `yaml:"front_invite_path" env:"FRONT_INVITE_PATH" env-default:"/invite" env-description:"Front-end path of the invitation page"`

	RateLimitStrict   int `yaml:"rate_limit_strict" env:"RATE_LIMIT_STRICT" env-default:"5" env-description:"Requests per minute on credential endpoints; 0 disables"`
	RateLimitModerate int `yaml:"rate_limit_moderate" env:"RATE_LIMIT_MODERATE" env-default:"20" env-description:"Requests per minute per user on protected endpoints; 0 disables"`
	RateLimitPublic   int `yaml:"rate_limit_public" env:"RATE_LIMIT_PUBLIC" env-default:"1000" env-description:"Requests per minute on public reads; 0 disables"`

	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-description:"OTLP/HTTP trace collector; empty disables tracing"`

	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period" env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s" env-description:"Graceful shutdown timeout"`
}

// LoadConfig reads the YAML file named by CONFIG_FILE, if any, then the
// environment.
func LoadConfig() (Config, error) {
	var (
		cfg Config
		err error
	)
	if path := os.Getenv(ConfigFileEnv); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.LogFormat, validation.In("json", "text")),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DatabaseFile, validation.Required),
		validation.Field(&c.TokenTTL, validation.Required),
		validation.Field(&c.OTPMaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultRoleID, validation.In(domain.RoleCaptain, domain.RoleOwner, domain.RoleAdmin)),
		validation.Field(&c.RateLimitStrict, validation.Min(0)),
		validation.Field(&c.RateLimitModerate, validation.Min(0)),
		validation.Field(&c.RateLimitPublic, validation.Min(0)),
	)
	if err != nil {
		return err
	}
	if c.SendStatus && (c.SMTPHost == "" || c.SMTPUsername == "") {
		return errors.New("SMTP_HOST and SMTP_USERNAME are required when SEND_STATUS is on")
	}
	if c.TokenRefreshThreshold >= c.TokenTTL {
		return errors.New("TOKEN_REFRESH_THRESHOLD must be shorter than TOKEN_TTL")
	}
	return nil
}

// Limits converts the per-minute settings into rate limit profiles.
func (c Config) Limits() httpx.Limits {
	perMinute := func(n int) httpx.RateLimitConfig {
		return httpx.RateLimitConfig{RequestsPerWindow: n, Window: time.Minute, Burst: n}
	}
	return httpx.Limits{
		Strict:   perMinute(c.RateLimitStrict),
		Moderate: perMinute(c.RateLimitModerate),
		Public:   perMinute(c.RateLimitPublic),
	}
}

// MailConfig returns the branding and link settings for outbound mail.
func (c Config) MailConfig() mail.Config {
	return mail.Config{
		FromName:    c.EmailFromName,
		CompanyName: c.EmailCompanyName,
		FrontURL:    c.FrontURL,
		ResetPath:   c.FrontResetPath,
		InvitePath:  c.FrontInvitePath,
	}
}
