package service

import (
	"context"
	"log/slog"
	"os"

	"vidtube/internal/middleware"
	"vidtube/internal/storage"
)

// discardTemp removes temp uploads that will never reach the uploader.
func discardTemp(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			middleware.Logger.Warn("failed to remove temp upload",
				slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}

// deleteObjects removes stored objects on a best-effort basis.
func deleteObjects(ctx context.Context, uploader storage.Uploader, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := uploader.Delete(ctx, key); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete stored object",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}
