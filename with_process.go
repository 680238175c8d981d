package annex

import (
	"context"
	"fmt"
)

// WithProcess manages process lifecycle with automatic cleanup.
//
// This helper starts command, executes the callback with the running
// session, and closes the session on every exit path, including a panic in
// fn. Close failures are logged and never override the callback's error.
//
// Example usage:
//
//	err := annex.WithProcess(ctx, annex.NewCommand(dir, "git", "annex", "lookupkey", "--batch"),
//	    func(p *annex.Process) error {
//	        key, err := p.Communicate("photo.jpg")
//	        if err != nil {
//	            return err
//	        }
//	        fmt.Println(key)
//	        return nil
//	    },
//	    annex.WithLogger(log),
//	)
func WithProcess(ctx context.Context, command Command, fn func(*Process) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	proc, err := StartProcess(ctx, command, opts...)
	if err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	defer func() {
		if closeErr := proc.Close(); closeErr != nil {
			log.Warn("failed to close process", "session", proc.ID(), "error", closeErr)
		}
	}()

	return fn(proc)
}
