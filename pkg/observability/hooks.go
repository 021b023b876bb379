package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// Chain combines hook sets; each callback runs in argument order.
func Chain(hooks ...domain.Hooks) domain.Hooks {
	var out domain.Hooks
	for _, h := range hooks {
		out.OnPage = chain(out.OnPage, h.OnPage)
		out.OnAudio = chain(out.OnAudio, h.OnAudio)
		out.OnConversion = chain(out.OnConversion, h.OnConversion)
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}

// LoggingHooks logs every event: pages and audio at debug, conversions at info.
func LoggingHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnPage: func(ctx context.Context, e *domain.PageEvent) {
			logger.DebugContext(ctx, string(e.Type), "format", e.Format, "page", e.PageID, "buttons", e.Buttons, "skipped", e.Skipped)
		},
		OnAudio: func(ctx context.Context, e *domain.AudioEvent) {
			logger.DebugContext(ctx, string(e.Type), "format", e.Format, "content_id", e.ContentID, "bytes", e.Bytes, "deduplicated", e.Deduplicated)
		},
		OnConversion: func(ctx context.Context, e *domain.ConversionEvent) {
			level := slog.LevelInfo
			if e.Err != nil {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "conversion finished",
				"format", e.Format,
				"op", e.Op,
				"path", e.Path,
				"pages", e.Pages,
				"duration", e.Duration,
				"result", Result(e.Err),
			)
		},
	}
}
