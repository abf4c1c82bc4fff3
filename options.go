package quill

import (
	"fmt"
	"log/slog"
	"os"

	phuslog "github.com/phuslu/log"

	"github.com/quillhq/quill/cache/ristretto"
	"github.com/quillhq/quill/core"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/router/httprouter"
)

// WithRouterHttprouter configures the App with the julienschmidt/httprouter
// based router.
func WithRouterHttprouter() core.Option {
	return core.WithRouter(httprouter.New())
}

// WithCacheRistretto configures the App with a ristretto backed file metadata
// cache.
func WithCacheRistretto() core.Option {
	c, err := ristretto.New[*db.File]()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize ristretto cache: %v", err))
	}
	return core.WithFileCache(c)
}

// DefaultLoggerOptions provides default settings for slog handlers: debug
// level, time attribute stripped (phuslu adds its own timestamp).
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}

// WithPhusLogger configures slog with phuslu/log's JSON handler. Uses
// DefaultLoggerOptions if opts is nil.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return core.WithLogger(slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts)))
}

// WithTextLogger configures slog with the standard library's text handler.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return core.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, opts)))
}
