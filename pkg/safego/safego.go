package safego

import (
	"context"
	"fmt"
	"runtime/debug"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// Execute runs fn in a new goroutine named goroutineName.
// A panic inside fn is recovered and logged with its stack trace instead of crashing the process.
func Execute(ctx context.Context, logger domain.Logger, goroutineName string, fn func()) {
	go Run(ctx, logger, goroutineName, fn)
}

// Run is the synchronous variant of Execute. It returns true when fn completed without panicking.
func Run(ctx context.Context, logger domain.Logger, goroutineName string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			// Logging must still work after the caller's context is done.
			logCtx := ctx
			if ctx.Err() != nil {
				logCtx = context.Background()
			}
			logger.Error(logCtx, fmt.Sprintf("Panic recovered in goroutine: %s", goroutineName),
				"panic_info", fmt.Sprintf("%v", r),
				"stacktrace", string(debug.Stack()),
			)
			ok = false
		}
	}()
	fn()
	return true
}
