package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies run_id and file from the event context into the event.
type ContextHook struct{}

func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if runID := GetRunID(ctx); runID != "" {
		e.Str("run_id", runID)
	}
	if file := GetFile(ctx); file != "" {
		e.Str("file", file)
	}
}
