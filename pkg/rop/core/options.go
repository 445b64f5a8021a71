package core

import "context"

type OptionKey string

const (
	ProcessOptionKey OptionKey = "process_options"
)

type ProcessOptions struct {
	// ProcessRemaining lets consumers evaluate values that were already
	// queued when the context was cancelled.
	ProcessRemaining bool
}

func WithProcessOptions(ctx context.Context, processRemaining bool) context.Context {
	return context.WithValue(ctx, ProcessOptionKey, ProcessOptions{ProcessRemaining: processRemaining})
}

func IsProcessRemainingEnabled(ctx context.Context, defaultProcessRemaining bool) bool {
	options, ok := ctx.Value(ProcessOptionKey).(ProcessOptions)
	if ok {
		return options.ProcessRemaining
	}
	return defaultProcessRemaining
}
