package config

import (
	"fmt"
	"time"
)

// Config is the single application configuration tree, loaded from TOML.
type Config struct {
	DBFile      string      `toml:"db_file"`
	Server      Server      `toml:"server"`
	Jwt         Jwt         `toml:"jwt"`
	Smtp        Smtp        `toml:"smtp"`
	Scheduler   Scheduler   `toml:"scheduler"`
	RateLimits  RateLimits  `toml:"rate_limits"`
	Uploads     Uploads     `toml:"uploads"`
	Api         Api         `toml:"api"`
	BackupLocal BackupLocal `toml:"backup_local"`
	Notifier    Notifier    `toml:"notifier"`
	Endpoints   Endpoints   `toml:"endpoints"`
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
	BaseURL                 string   `toml:"base_url"`
}

type Jwt struct {
	AuthSecret        string   `toml:"auth_secret"`
	AuthTokenDuration Duration `toml:"auth_token_duration"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
	LocalName   string `toml:"local_name"`
	AuthMethod  string `toml:"auth_method"`
	UseTLS      bool   `toml:"use_tls"`
	UseStartTLS bool   `toml:"use_start_tls"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
}

type Scheduler struct {
	Interval              Duration `toml:"interval"`
	MaxJobsPerTick        int      `toml:"max_jobs_per_tick"`
	ConcurrencyMultiplier int      `toml:"concurrency_multiplier"`
}

// RateLimits holds the cooldown windows used to bucket code emails: repeated
// requests that fall into the same window collapse into a single queued job.
type RateLimits struct {
	EmailVerificationCooldown Duration `toml:"email_verification_cooldown"`
	PasswordResetCooldown     Duration `toml:"password_reset_cooldown"`
}

type Uploads struct {
	Dir          string   `toml:"dir"`
	MaxSizeBytes int64    `toml:"max_size_bytes"`
	AllowedTypes []string `toml:"allowed_types"`
}

type Api struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

type BackupLocal struct {
	Enabled   bool     `toml:"enabled"`
	BackupDir string   `toml:"backup_dir"`
	Interval  Duration `toml:"interval"`
}

type Notifier struct {
	Discord Discord `toml:"discord"`
}

type Discord struct {
	Activated    bool     `toml:"activated"`
	WebhookURL   string   `toml:"webhook_url"`
	APIRateLimit Duration `toml:"api_rate_limit"`
	APIBurst     int      `toml:"api_burst"`
	SendTimeout  Duration `toml:"send_timeout"`
}

// Endpoints names the public routes, "METHOD /path". Handlers and docs both
// read from here so the two cannot drift apart.
type Endpoints struct {
	Signup                   string `toml:"signup"`
	Signin                   string `toml:"signin"`
	RequestEmailVerification string `toml:"request_email_verification"`
	ConfirmEmailVerification string `toml:"confirm_email_verification"`
	RequestPasswordRecovery  string `toml:"request_password_recovery"`
	ConfirmPasswordRecovery  string `toml:"confirm_password_recovery"`
	ChangePassword           string `toml:"change_password"`
	UpdateProfile            string `toml:"update_profile"`
	Me                       string `toml:"me"`

	CreateCategory string `toml:"create_category"`
	UpdateCategory string `toml:"update_category"`
	DeleteCategory string `toml:"delete_category"`
	GetCategory    string `toml:"get_category"`
	ListCategories string `toml:"list_categories"`

	CreatePost string `toml:"create_post"`
	UpdatePost string `toml:"update_post"`
	DeletePost string `toml:"delete_post"`
	GetPost    string `toml:"get_post"`
	ListPosts  string `toml:"list_posts"`

	UploadFile string `toml:"upload_file"`
	GetFile    string `toml:"get_file"`
	DeleteFile string `toml:"delete_file"`
}

// Duration wraps time.Duration so TOML values can be written as "45m" or
// "24h" strings.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
