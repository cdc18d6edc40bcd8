package router

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"pkg.world.dev/world-engine/evmutil/units"
)

type Option func(r *Router)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Router) {
		r.tracer = tracer
	}
}

// WithAddressSpace overrides the reserved address range native accounts are decoded from.
func WithAddressSpace(space units.AddressSpace) Option {
	return func(r *Router) {
		r.space = space
	}
}
