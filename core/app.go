package core

import (
	"log/slog"

	"github.com/quillhq/quill/cache"
	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/notify"
	"github.com/quillhq/quill/router"
)

// App is the application wide context. Database handles, the router, the
// cache and the other long-lived objects live here; every handler and
// middleware has App as receiver.
type App struct {
	dbAuth         db.DbAuth
	dbContent      db.DbContent
	dbFile         db.DbFile
	dbQueue        db.DbQueue
	router         router.Router
	fileCache      cache.Cache[string, *db.File]
	configProvider *config.Provider
	logger         *slog.Logger
	notifier       notify.Notifier
	authenticator  Authenticator
	validator      Validator
}

type Option func(*App)

func WithDbApp(dbApp db.DbApp) Option {
	return func(a *App) { a.SetDb(dbApp) }
}

func WithRouter(r router.Router) Option {
	return func(a *App) { a.router = r }
}

func WithFileCache(c cache.Cache[string, *db.File]) Option {
	return func(a *App) { a.fileCache = c }
}

func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) { a.configProvider = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// NewApp assembles an App from options and fills in the default
// authenticator and validator. The database, config provider and logger are
// required; everything else is optional.
func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.dbAuth == nil || a.dbContent == nil || a.dbFile == nil || a.dbQueue == nil {
		return nil, ErrMissingDb
	}
	if a.configProvider == nil {
		return nil, ErrMissingConfigProvider
	}
	if a.logger == nil {
		return nil, ErrMissingLogger
	}

	if a.authenticator == nil {
		a.authenticator = NewDefaultAuthenticator(a.dbAuth, a.logger, a.configProvider)
	}
	if a.validator == nil {
		a.validator = NewValidator()
	}

	return a, nil
}

func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) DbAuth() db.DbAuth {
	return a.dbAuth
}

func (a *App) DbContent() db.DbContent {
	return a.dbContent
}

func (a *App) DbFile() db.DbFile {
	return a.dbFile
}

func (a *App) DbQueue() db.DbQueue {
	return a.dbQueue
}

// SetDb sets every database role interface from one combined implementation.
func (a *App) SetDb(dbApp db.DbApp) {
	if dbApp == nil {
		panic("DbApp cannot be nil")
	}
	a.dbAuth = dbApp
	a.dbContent = dbApp
	a.dbFile = dbApp
	a.dbQueue = dbApp
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) FileCache() cache.Cache[string, *db.File] {
	return a.fileCache
}

func (a *App) SetFileCache(c cache.Cache[string, *db.File]) {
	a.fileCache = c
}

// Config returns the current configuration snapshot.
func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) SetConfigProvider(provider *config.Provider) {
	a.configProvider = provider
}

func (a *App) Notifier() notify.Notifier {
	return a.notifier
}

func (a *App) SetNotifier(n notify.Notifier) {
	a.notifier = n
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

func (a *App) SetAuthenticator(auth Authenticator) {
	a.authenticator = auth
}

func (a *App) Validator() Validator {
	return a.validator
}

func (a *App) SetValidator(v Validator) {
	a.validator = v
}
