package evmutil

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"pkg.world.dev/world-engine/evmutil/units"
)

type Option func(c *Contract)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Contract) {
		c.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Contract) {
		c.tracer = tracer
	}
}

func WithAddressSpace(space units.AddressSpace) Option {
	return func(c *Contract) {
		c.space = space
	}
}

// WithBytecodes sets the contracts the deploy actions create.
func WithBytecodes(code Bytecodes) Option {
	return func(c *Contract) {
		c.code = code
	}
}
