package tools

import (
	"context"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/helpers/logger"
)

// TaskFunc defines a background task kicked loose from a request cycle.
type TaskFunc func(ctx context.Context) error

// Dispatch runs the task in a separate goroutine, fire-and-forget; the
// outcome is only logged since no caller is left to receive it.
func Dispatch(ctx context.Context, log *logger.Logger, name string, fn TaskFunc) {
	if log == nil {
		log = logger.NewNop()
	}
	go func() {
		if err := fn(ctx); err != nil {
			log.Error("background task failed", "task", name, "error", err)
		}
	}()
}
