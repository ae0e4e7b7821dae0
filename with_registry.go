package mcpregistry

import (
	"context"
)

// WithRegistry manages registry lifecycle with automatic cleanup.
//
// This helper creates a registry with the provided options, executes the
// callback, and then closes the registry, stopping every server the callback
// left connected.
//
// If the callback returns an error, it is returned to the caller.
// If Close() fails, a warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := mcpregistry.WithRegistry(ctx, func(reg mcpregistry.Registry) error {
//	    if err := reg.Connect(ctx, "bmi", spec); err != nil {
//	        return err
//	    }
//	    tools, err := reg.ListTools(ctx, "bmi")
//	    // ...
//	    return err
//	},
//	    mcpregistry.WithLogger(log),
//	)
func WithRegistry(ctx context.Context, fn func(Registry) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	reg := New(opts...)

	defer func() {
		// Servers must stop even if ctx was cancelled.
		if closeErr := reg.Close(context.WithoutCancel(ctx)); closeErr != nil {
			log.Warn("failed to close registry", "error", closeErr)
		}
	}()

	return fn(reg)
}
