package config

import (
	"time"

	"github.com/quillhq/quill/crypto"
)

// NewDefaultConfig creates a new Config with sensible defaults.
// All secret values are randomly generated.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile: "quill.db",
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
			BaseURL:                 "http://localhost:8080",
		},
		Jwt: Jwt{
			AuthSecret:        crypto.RandomString(32, crypto.AlphanumericAlphabet),
			AuthTokenDuration: Duration{Duration: 45 * time.Minute},
		},
		Smtp: Smtp{
			Enabled:     false,
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "Quill",
			FromAddress: "",
			LocalName:   "",
			AuthMethod:  "plain",
			UseTLS:      false,
			UseStartTLS: true,
			Username:    "",
			Password:    "",
		},
		Scheduler: Scheduler{
			Interval:              Duration{Duration: 60 * time.Second},
			MaxJobsPerTick:        10,
			ConcurrencyMultiplier: 2,
		},
		RateLimits: RateLimits{
			EmailVerificationCooldown: Duration{Duration: 1 * time.Hour},
			PasswordResetCooldown:     Duration{Duration: 2 * time.Hour},
		},
		Uploads: Uploads{
			Dir:          "uploads",
			MaxSizeBytes: 8 * 1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		},
		Api: Api{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		BackupLocal: BackupLocal{
			Enabled:   false,
			BackupDir: "backups",
			Interval:  Duration{Duration: 24 * time.Hour},
		},
		Notifier: Notifier{
			Discord: Discord{
				Activated:    false,
				WebhookURL:   "",
				APIRateLimit: Duration{Duration: 2 * time.Second},
				APIBurst:     1,
				SendTimeout:  Duration{Duration: 10 * time.Second},
			},
		},
		Endpoints: Endpoints{
			Signup:                   "POST /api/v1/auth/signup",
			Signin:                   "POST /api/v1/auth/signin",
			RequestEmailVerification: "POST /api/v1/auth/verify/request",
			ConfirmEmailVerification: "POST /api/v1/auth/verify/confirm",
			RequestPasswordRecovery:  "POST /api/v1/auth/password/forgot",
			ConfirmPasswordRecovery:  "POST /api/v1/auth/password/recover",
			ChangePassword:           "PATCH /api/v1/auth/password/change",
			UpdateProfile:            "PATCH /api/v1/auth/profile",
			Me:                       "GET /api/v1/auth/me",

			CreateCategory: "POST /api/v1/categories",
			UpdateCategory: "PUT /api/v1/categories/:id",
			DeleteCategory: "DELETE /api/v1/categories/:id",
			GetCategory:    "GET /api/v1/categories/:id",
			ListCategories: "GET /api/v1/categories",

			CreatePost: "POST /api/v1/posts",
			UpdatePost: "PUT /api/v1/posts/:id",
			DeletePost: "DELETE /api/v1/posts/:id",
			GetPost:    "GET /api/v1/posts/:id",
			ListPosts:  "GET /api/v1/posts",

			UploadFile: "POST /api/v1/files",
			GetFile:    "GET /api/v1/files/:id",
			DeleteFile: "DELETE /api/v1/files/:id",
		},
	}
}
