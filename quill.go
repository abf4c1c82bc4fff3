package quill

import (
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/core"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/mail"
	"github.com/quillhq/quill/notify"
	"github.com/quillhq/quill/notify/discord"
	"github.com/quillhq/quill/queue"
	"github.com/quillhq/quill/queue/executor"
	"github.com/quillhq/quill/queue/handlers"
	scl "github.com/quillhq/quill/queue/scheduler"
	"github.com/quillhq/quill/router/httprouter"
	"github.com/quillhq/quill/server"
)

// New loads configuration from the given TOML file and assembles the
// application: core App, routes, notifier, job scheduler and server. The
// returned App is fully wired; call srv.Run() to start serving.
func New(configPath string, opts ...core.Option) (*core.App, *server.Server, error) {
	bootLogger := slog.Default()

	cfg, err := config.Load(configPath, bootLogger)
	if err != nil {
		bootLogger.Error("failed to load config", "path", configPath, "error", err)
		return nil, nil, err
	}

	configProvider := config.NewProvider(cfg)

	// The provider option goes first so user options may still override it.
	allOpts := []core.Option{core.WithConfigProvider(configProvider)}
	allOpts = append(allOpts, opts...)

	app, err := core.NewApp(allOpts...)
	if err != nil {
		bootLogger.Error("failed to initialize core app", "error", err)
		return nil, nil, err
	}

	if app.Router() == nil {
		app.SetRouter(httprouter.New())
	}

	if cfg.Notifier.Discord.Activated {
		notifier, err := setupDiscordNotifier(cfg, app.Logger())
		if err != nil {
			app.Logger().Error("failed to setup discord notifier", "error", err)
			return nil, nil, err
		}
		app.SetNotifier(notifier)
	}

	route(cfg, app)

	scheduler, err := setupScheduler(configProvider, app)
	if err != nil {
		app.Logger().Error("failed to setup scheduler", "error", err)
		return nil, nil, err
	}

	srv := server.NewServer(configProvider, app.Router(), scheduler, app.Logger())

	return app, srv, nil
}

func setupDiscordNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	dc := cfg.Notifier.Discord
	return discord.New(discord.Options{
		WebhookURL:   dc.WebhookURL,
		APIRateLimit: rate.Every(dc.APIRateLimit.Duration),
		APIBurst:     dc.APIBurst,
		SendTimeout:  dc.SendTimeout.Duration,
	}, logger)
}

// setupScheduler registers a job handler for every job type the current
// configuration enables. Code emails need SMTP; local backups need a backup
// directory and insert their own recurrent job on first boot.
func setupScheduler(configProvider *config.Provider, app *core.App) (*scl.Scheduler, error) {
	cfg := configProvider.Get()
	logger := app.Logger()

	hdls := make(map[string]executor.JobHandler)

	if cfg.Smtp.Enabled {
		mailer, err := mail.New(configProvider)
		if err != nil {
			return nil, err
		}
		hdls[queue.JobTypeVerificationEmail] = handlers.NewVerificationEmailHandler(app.DbAuth(), mailer, logger)
		hdls[queue.JobTypeRecoveryEmail] = handlers.NewRecoveryEmailHandler(app.DbAuth(), mailer, logger)
	} else {
		logger.Warn("smtp disabled, code emails will stay queued until a delivery handler is configured")
	}

	if cfg.BackupLocal.Enabled {
		hdls[queue.JobTypeBackupLocal] = handlers.NewBackupLocalHandler(configProvider, logger)
		if err := insertRecurrentBackupJob(app.DbQueue(), cfg); err != nil {
			return nil, err
		}
	}

	return scl.NewScheduler(cfg.Scheduler, app.DbQueue(), executor.NewExecutor(hdls), logger, app.Notifier()), nil
}

func insertRecurrentBackupJob(dbq db.DbQueue, cfg *config.Config) error {
	err := dbq.InsertJob(db.Job{
		JobType:   queue.JobTypeBackupLocal,
		Payload:   []byte(`{}`),
		Recurrent: true,
		Interval:  cfg.BackupLocal.Interval.Duration,
	})
	if err != nil && !errors.Is(err, db.ErrConstraintUnique) {
		return err
	}
	return nil
}
